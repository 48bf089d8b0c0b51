package controllers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"carrental-backend/availability"
	"carrental-backend/models"
	"carrental-backend/services"
	"carrental-backend/utils"
)

// AvailabilityComputer is the read model behind the calendar endpoints.
type AvailabilityComputer interface {
	Compute(ctx context.Context, q availability.Query) (availability.Result, error)
	Window(q availability.Query) (time.Time, time.Time, error)
	Location() *time.Location
}

type AvailabilityController struct {
	Avail     AvailabilityComputer
	Vehicles  VehicleStore
	WeekStart time.Weekday
	Now       func() time.Time
}

func NewAvailabilityController(avail AvailabilityComputer, vehicles VehicleStore, weekStart time.Weekday) *AvailabilityController {
	return &AvailabilityController{Avail: avail, Vehicles: vehicles, WeekStart: weekStart, Now: time.Now}
}

type navigatorState struct {
	View   availability.ViewMode `json:"view"`
	Date   string                `json:"date"`
	Month  int                   `json:"month"`
	Year   int                   `json:"year"`
	Search string                `json:"search,omitempty"`
}

type availabilityRequest struct {
	query     availability.Query
	navigator *availability.Navigator
	// search is q; it narrows the vehicles in either request form.
	search string
	// noMatch is set when a search filter matched no vehicle; an empty
	// VehicleIDs would otherwise mean the whole fleet.
	noMatch bool
}

// parseRequest reads either an explicit start/end window or the navigator
// parameters view/date/move. The q search applies to both.
func (ctrl *AvailabilityController) parseRequest(c *gin.Context) (availabilityRequest, error) {
	loc := ctrl.Avail.Location()
	var req availabilityRequest

	ids, err := utils.ParseIDList(c.Query("vehicle_ids"))
	if err != nil {
		return req, err
	}
	req.query.VehicleIDs = ids
	req.search = strings.TrimSpace(c.Query("q"))

	startRaw, endRaw := c.Query("start"), c.Query("end")
	if startRaw != "" || endRaw != "" {
		if startRaw == "" || endRaw == "" {
			return req, fmt.Errorf("start and end must be given together")
		}
		if req.query.Start, err = utils.ParseDate(startRaw, loc); err != nil {
			return req, err
		}
		if req.query.End, err = utils.ParseDate(endRaw, loc); err != nil {
			return req, err
		}
		return req, nil
	}

	mode := availability.ViewMonth
	if raw := c.Query("view"); raw != "" {
		m, ok := availability.ParseViewMode(raw)
		if !ok {
			return req, fmt.Errorf("unknown view %q, want day, week, month or quarter", raw)
		}
		mode = m
	}
	anchor := availability.Day(ctrl.Now(), loc)
	if raw := c.Query("date"); raw != "" {
		if anchor, err = utils.ParseDate(raw, loc); err != nil {
			return req, err
		}
	}

	nav := availability.NewNavigator(anchor, mode, ctrl.WeekStart, loc)
	switch strings.ToLower(c.Query("move")) {
	case "":
	case "next":
		nav.NextPeriod()
	case "prev":
		nav.PrevPeriod()
	case "today":
		nav.GoToToday(ctrl.Now())
	default:
		return req, fmt.Errorf("unknown move %q, want next, prev or today", c.Query("move"))
	}
	nav.SetSearchFilter(req.search)
	req.navigator = nav
	req.query.Start, req.query.End = nav.Window()
	return req, nil
}

// applySearch narrows the query to vehicles whose name matches the
// search text.
func (ctrl *AvailabilityController) applySearch(ctx context.Context, req *availabilityRequest) error {
	if req.search == "" {
		return nil
	}
	vehicles, err := ctrl.Vehicles.List(ctx)
	if err != nil {
		return fmt.Errorf("%w: list vehicles: %v", availability.ErrSourceUnavailable, err)
	}
	if len(req.query.VehicleIDs) > 0 {
		wanted := make(map[uint]bool, len(req.query.VehicleIDs))
		for _, id := range req.query.VehicleIDs {
			wanted[id] = true
		}
		kept := vehicles[:0:0]
		for _, v := range vehicles {
			if wanted[v.ID] {
				kept = append(kept, v)
			}
		}
		vehicles = kept
	}
	req.query.VehicleIDs = availability.FilterVehicles(vehicles, req.search)
	req.noMatch = len(req.query.VehicleIDs) == 0
	return nil
}

func (ctrl *AvailabilityController) compute(c *gin.Context) (availabilityRequest, availability.Result, bool) {
	req, err := ctrl.parseRequest(c)
	if err != nil {
		respondBadRequest(c, err.Error())
		return req, availability.Result{}, false
	}
	// Checked up front so a search that matches nothing cannot mask a bad window.
	start, end, err := ctrl.Avail.Window(req.query)
	if err != nil {
		respondError(c, err)
		return req, availability.Result{}, false
	}
	if err := ctrl.applySearch(c.Request.Context(), &req); err != nil {
		respondError(c, err)
		return req, availability.Result{}, false
	}
	if req.noMatch {
		return req, availability.Result{Start: start, End: end}, true
	}

	res, err := ctrl.Avail.Compute(c.Request.Context(), req.query)
	if err != nil {
		respondError(c, err)
		return req, availability.Result{}, false
	}
	return req, res, true
}

// GetAvailability handles GET /api/availability.
//
// Per-vehicle failures are reported inside the payload. Only a request
// for a single vehicle that failed maps that vehicle's error onto the
// response status.
func (ctrl *AvailabilityController) GetAvailability(c *gin.Context) {
	req, res, ok := ctrl.compute(c)
	if !ok {
		return
	}
	if len(req.query.VehicleIDs) == 1 && len(res.Vehicles) == 1 && res.Vehicles[0].Err != nil {
		respondError(c, res.Vehicles[0].Err)
		return
	}

	data := gin.H{
		"start":    res.Start.Format(availability.DateLayout),
		"end":      res.End.Format(availability.DateLayout),
		"vehicles": services.CalendarViews(res),
	}
	if req.navigator != nil {
		data["navigator"] = navigatorState{
			View:   req.navigator.Mode,
			Date:   req.navigator.Anchor.Format(availability.DateLayout),
			Month:  int(req.navigator.Month()),
			Year:   req.navigator.Year(),
			Search: req.navigator.Search,
		}
	}
	utils.JSONSuccess(c, http.StatusOK, data)
}

// ExportCSV handles GET /api/availability/export.csv. Vehicles that failed
// are left out and counted in X-Availability-Errors.
func (ctrl *AvailabilityController) ExportCSV(c *gin.Context) {
	_, res, ok := ctrl.compute(c)
	if !ok {
		return
	}

	failed := 0
	for _, vc := range res.Vehicles {
		if vc.Err != nil {
			failed++
		}
	}
	filename := fmt.Sprintf("availability_%s_%s.csv",
		res.Start.Format(availability.DateLayout), res.End.Format(availability.DateLayout))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Header("X-Availability-Errors", fmt.Sprint(failed))
	c.Status(http.StatusOK)
	if err := services.WriteAvailabilityCSV(c.Writer, res.Days()); err != nil {
		_ = c.Error(err)
	}
}

// GetConflicts handles GET /api/vehicles/:id/conflicts?start=&end=: the
// overlapping booking pairs behind flagged days.
func (ctrl *AvailabilityController) GetConflicts(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	c.Request.URL.RawQuery = withVehicle(c, id)
	_, res, ok := ctrl.compute(c)
	if !ok {
		return
	}
	if len(res.Vehicles) == 1 && res.Vehicles[0].Err != nil {
		respondError(c, res.Vehicles[0].Err)
		return
	}

	seen := map[[2]uint]bool{}
	pairs := make([][2]models.Booking, 0)
	for _, d := range res.Days() {
		if !d.HasConflict {
			continue
		}
		for _, p := range availability.ConflictPairs(d.Bookings) {
			key := [2]uint{p[0].ID, p[1].ID}
			if seen[key] {
				continue
			}
			seen[key] = true
			pairs = append(pairs, p)
		}
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"vehicleId": id, "pairs": pairs})
}

func withVehicle(c *gin.Context, id uint) string {
	q := c.Request.URL.Query()
	q.Set("vehicle_ids", fmt.Sprint(id))
	q.Del("q")
	return q.Encode()
}
