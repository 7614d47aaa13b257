package model

type ComposeRequestBody struct {
	Steps int    `json:"steps"`
	Seed  *int64 `json:"seed,omitempty"`
}

type ComposeResponse struct {
	ID string `json:"id"`
	// Groups holds one entry per time step, each the per-voice event
	// strings in voice order.
	Groups [][]string `json:"groups"`
	// DeadEnds counts sampling steps that had to repeat the previous
	// output; normally zero.
	DeadEnds int `json:"dead_ends,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"detail"`
}
