// Package view computes the derived projections the dashboard screens
// render. Everything here is pure: projections are recomputed from store
// snapshots on every read and never held as separate mutable state.
package view

import (
	"sort"
	"strings"
	"time"

	"github.com/jwalitptl/frontdesk/internal/model"
)

// WindowHours is the fixed set of selectable look-ahead windows.
var WindowHours = []int{24, 48, 72, 168, 336, 720}

// ValidWindow reports whether h is one of the selectable windows.
func ValidWindow(h int) bool {
	for _, w := range WindowHours {
		if w == h {
			return true
		}
	}
	return false
}

type SortBy int

const (
	SortByTime SortBy = iota
	SortByPatient
	SortByStatus
)

// statusPriority orders the canonical labels for status sorting; anything
// non-canonical sorts last.
func statusPriority(s model.VerificationStatus) int {
	switch s {
	case model.StatusVerified:
		return 0
	case model.StatusNeedsReview:
		return 1
	case model.StatusExpired:
		return 2
	}
	return 3
}

// Filter selects and orders appointments for one view.
type Filter struct {
	// WindowHours bounds DateTime to [now, now+WindowHours]; zero disables
	// the window.
	WindowHours int
	// Status keeps only exact matches when non-empty.
	Status model.VerificationStatus
	// Query is a case-insensitive substring match against the patient name.
	Query string
	SortBy SortBy
}

// Apply returns the filtered, sorted projection of appointments at the
// given instant. The window is inclusive at both bounds.
func (f Filter) Apply(appointments []model.Appointment, now time.Time) []model.Appointment {
	query := strings.ToLower(strings.TrimSpace(f.Query))
	var end time.Time
	if f.WindowHours > 0 {
		end = now.Add(time.Duration(f.WindowHours) * time.Hour)
	}

	out := make([]model.Appointment, 0, len(appointments))
	for _, appt := range appointments {
		if f.WindowHours > 0 {
			if appt.DateTime.Before(now) || appt.DateTime.After(end) {
				continue
			}
		}
		if f.Status != "" && appt.InsuranceStatus != f.Status {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(appt.PatientName), query) {
			continue
		}
		out = append(out, appt)
	}

	switch f.SortBy {
	case SortByPatient:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].PatientName < out[j].PatientName
		})
	case SortByStatus:
		sort.SliceStable(out, func(i, j int) bool {
			return statusPriority(out[i].InsuranceStatus) < statusPriority(out[j].InsuranceStatus)
		})
	default:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].DateTime.Before(out[j].DateTime)
		})
	}
	return out
}

// Stats are the aggregate counts over a filtered set, not the full
// collection. Total always equals the sum of the four partitions.
type Stats struct {
	Total       int `json:"total"`
	Verified    int `json:"verified"`
	NeedsReview int `json:"needs_review"`
	Expired     int `json:"expired"`
	Other       int `json:"other"`
}

// ComputeStats counts the status partition of the given appointments.
func ComputeStats(appointments []model.Appointment) Stats {
	stats := Stats{Total: len(appointments)}
	for _, appt := range appointments {
		switch appt.InsuranceStatus {
		case model.StatusVerified:
			stats.Verified++
		case model.StatusNeedsReview:
			stats.NeedsReview++
		case model.StatusExpired:
			stats.Expired++
		default:
			stats.Other++
		}
	}
	return stats
}

// UnresolvedAlerts filters a snapshot down to the alerts still needing
// attention, newest first (the store already orders them).
func UnresolvedAlerts(alerts []model.Alert) []model.Alert {
	out := make([]model.Alert, 0, len(alerts))
	for _, a := range alerts {
		if !a.Resolved {
			out = append(out, a)
		}
	}
	return out
}
