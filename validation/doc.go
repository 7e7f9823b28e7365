// Package validation validates structs with go-playground/validator tags and
// reports failures as *errors.AppError values with per-field details.
package validation
