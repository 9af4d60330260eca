// Package domain contains the core entities of the progress-and-grading
// engine: courses with their evaluation parameters, activities and lessons,
// per-user progress rows, and the derived grade rows. Entities are plain
// structs with Validate methods; all mutation happens in the service layer.
package domain
