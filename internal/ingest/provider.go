package ingest

// Result holds the outcome of an ingest operation.
type Result struct {
	SessionsReceived int `json:"sessions_received"`
	WorkoutsAdded    int `json:"workouts_added"`
	WorkoutsSkipped  int `json:"workouts_skipped"`
	ExercisesAdded   int `json:"exercises_added"`

	Message string `json:"message,omitempty"`
}
