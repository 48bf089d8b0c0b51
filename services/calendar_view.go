package services

import (
	"carrental-backend/availability"
)

// ViewError is the wire form of a per-vehicle engine error.
type ViewError struct {
	Code    availability.ErrCode `json:"code"`
	Message string               `json:"message"`
}

// VehicleCalendarView is one vehicle's row as sent to clients: its days,
// or the reason it has none.
type VehicleCalendarView struct {
	VehicleID uint                   `json:"vehicleId"`
	Days      []availability.DayInfo `json:"days"`
	Error     *ViewError             `json:"error,omitempty"`
}

func CalendarViews(res availability.Result) []VehicleCalendarView {
	out := make([]VehicleCalendarView, 0, len(res.Vehicles))
	for _, vc := range res.Vehicles {
		v := VehicleCalendarView{VehicleID: vc.VehicleID, Days: vc.Days}
		if v.Days == nil {
			v.Days = []availability.DayInfo{}
		}
		if vc.Err != nil {
			v.Error = &ViewError{Code: availability.Code(vc.Err), Message: vc.Err.Error()}
		}
		out = append(out, v)
	}
	return out
}
