package model

import (
    "strings"
    "time"
)

// GarmentType enumerates the kinds of garment a client can commission.
type GarmentType string

const (
    GarmentShirt  GarmentType = "shirt"
    GarmentJacket GarmentType = "jacket"
    GarmentPants  GarmentType = "pants"
    GarmentOther  GarmentType = "other"
)

// ValidGarmentType reports whether s is one of the known garment types.
func ValidGarmentType(s string) bool {
    switch GarmentType(s) {
    case GarmentShirt, GarmentJacket, GarmentPants, GarmentOther:
        return true
    }
    return false
}

// CommissionStatus enumerates the lifecycle states of a commission.  A
// commission always starts at Pending.  Completed and Cancelled are
// terminal for the owner but the admin may move a record to any status
// from any status; that permissiveness is intentional.
type CommissionStatus string

const (
    StatusPending    CommissionStatus = "Pending"
    StatusInProgress CommissionStatus = "In Progress"
    StatusCompleted  CommissionStatus = "Completed"
    StatusCancelled  CommissionStatus = "Cancelled"
)

// ValidStatus reports whether s is one of the known commission statuses.
func ValidStatus(s string) bool {
    switch CommissionStatus(s) {
    case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
        return true
    }
    return false
}

// AllowedBudgets is the fixed set of budget range strings a commission
// may carry.  Values are USD ranges chosen on the request form.
var AllowedBudgets = map[string]bool{
    "under-300": true,
    "300-500":   true,
    "500-800":   true,
    "over-800":  true,
}

// AllowedTimelines is the fixed set of delivery timeline strings.
var AllowedTimelines = map[string]bool{
    "no-rush":   true,
    "1-2weeks":  true,
    "3-4weeks":  true,
    "1-2months": true,
}

// Commission is a custom-order request with a status lifecycle.  The
// measurement columns are a snapshot copied from the submitting request;
// they do not track later profile edits.  Terminal records are retained
// for history and never hard-deleted.
//
// Fields:
//  ID          – primary key identifier.
//  OwnerID     – user who submitted the request; immutable after creation.
//  GarmentType – shirt | jacket | pants | other.
//  Measurements – snapshot of the body measurements relevant to the garment.
//  Budget      – one of AllowedBudgets.
//  Timeline    – one of AllowedTimelines.
//  Details     – free-text description, required non-empty.
//  Status      – Pending | In Progress | Completed | Cancelled.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp (touched by every mutation).
type Commission struct {
    ID          uint64           `json:"id"`           // commissions.id
    OwnerID     uint64           `json:"owner_id"`     // commissions.owner_id
    GarmentType GarmentType      `json:"garment_type"` // commissions.garment_type
    Measurements Measurements    `json:"measurements"` // commissions.chest .. shoulders
    Budget      string           `json:"budget"`       // commissions.budget
    Timeline    string           `json:"timeline"`     // commissions.timeline
    Details     string           `json:"details"`      // commissions.details
    Status      CommissionStatus `json:"status"`       // commissions.status
    CreatedAt   time.Time        `json:"created_at"`   // commissions.created_at
    UpdatedAt   time.Time        `json:"updated_at"`   // commissions.updated_at
}

// requiredMeasurements maps each garment type to the measurement fields
// that must be strictly positive for the request to make sense to the
// tailor.  "other" has no required fields.
var requiredMeasurements = map[GarmentType][]string{
    GarmentShirt:  {"chest", "shoulders"},
    GarmentJacket: {"chest", "shoulders"},
    GarmentPants:  {"waist", "hips", "length", "inseam"},
    GarmentOther:  {},
}

// ValidateCommissionInput checks a create or update payload and returns
// the names of every violated field, not just the first, so a form can
// highlight all of them at once.  An empty slice means the input is valid.
func ValidateCommissionInput(garment string, m Measurements, budget, timeline, details string) []string {
    var fields []string
    if !ValidGarmentType(garment) {
        fields = append(fields, "garment_type")
    }
    if !AllowedBudgets[budget] {
        fields = append(fields, "budget")
    }
    if !AllowedTimelines[timeline] {
        fields = append(fields, "timeline")
    }
    if strings.TrimSpace(details) == "" {
        fields = append(fields, "details")
    }
    for _, name := range requiredMeasurements[GarmentType(garment)] {
        if measurementByName(m, name) <= 0 {
            fields = append(fields, name)
        }
    }
    return fields
}

func measurementByName(m Measurements, name string) float64 {
    switch name {
    case "chest":
        return m.Chest
    case "waist":
        return m.Waist
    case "hips":
        return m.Hips
    case "length":
        return m.Length
    case "inseam":
        return m.Inseam
    case "shoulders":
        return m.Shoulders
    }
    return 0
}
