package engine

// Model is one engine model file.
type Model struct {
	Name string
	Path string
}

// Selector trades transcription quality for speed under load.
type Selector struct {
	Fast      Model
	Quality   Model
	Threshold int
}

// NewSelector builds a Selector from the engine configuration.
func NewSelector(cfg Config) Selector {
	return Selector{
		Fast:      Model{Name: cfg.FastModel.Name, Path: cfg.FastModel.Path},
		Quality:   Model{Name: cfg.QualityModel.Name, Path: cfg.QualityModel.Path},
		Threshold: cfg.FastModelDepth,
	}
}

// Select returns the fast model when depth is at or above the threshold and
// the quality model otherwise. depth is the queue depth observed when the job
// is about to run, itself included.
func (s Selector) Select(depth int) Model {
	if depth >= s.Threshold {
		return s.Fast
	}
	return s.Quality
}
