package model

type RouteRequest struct {
	StartLocation    string `json:"start_location" validate:"required"`
	EndLocation      string `json:"end_location" validate:"required"`
	VehicleWeightLbs int    `json:"vehicle_weight_lbs,omitempty"`
}

type RouteResponse struct {
	Guidance string `json:"guidance"`
}
