package model

import "time"

// Measurements groups the six body measurements used across the
// application, in decimal inches.  Zero means "not provided".  The same
// struct serves two purposes: the reusable per-user measurement profile,
// and the snapshot embedded into a commission at submission time.  The
// snapshot is a copy, never a live reference — editing the profile later
// does not change an already submitted commission.
type Measurements struct {
    Chest     float64 `json:"chest"`
    Waist     float64 `json:"waist"`
    Hips      float64 `json:"hips"`
    Length    float64 `json:"length"`
    Inseam    float64 `json:"inseam"`
    Shoulders float64 `json:"shoulders"`
}

// MeasurementProfile is a user's saved measurements, owned 1:1 by the
// user.  No history is kept; each save overwrites the row.
//
// Fields:
//  UserID    – owner of the profile (primary key).
//  UpdatedAt – when the profile was last saved.
type MeasurementProfile struct {
    UserID uint64 `json:"user_id"` // measurement_profiles.user_id
    Measurements
    UpdatedAt time.Time `json:"updated_at"` // measurement_profiles.updated_at
}

// MeasurementPatch carries a partial profile update.  Nil fields keep
// their previously saved value; provided fields overwrite it.  A value
// below zero is rejected by Validate.
type MeasurementPatch struct {
    Chest     *float64 `json:"chest"`
    Waist     *float64 `json:"waist"`
    Hips      *float64 `json:"hips"`
    Length    *float64 `json:"length"`
    Inseam    *float64 `json:"inseam"`
    Shoulders *float64 `json:"shoulders"`
}

// Validate returns the names of every provided field holding a negative
// value.  An empty slice means the patch is acceptable.
func (p MeasurementPatch) Validate() []string {
    var fields []string
    check := func(name string, v *float64) {
        if v != nil && *v < 0 {
            fields = append(fields, name)
        }
    }
    check("chest", p.Chest)
    check("waist", p.Waist)
    check("hips", p.Hips)
    check("length", p.Length)
    check("inseam", p.Inseam)
    check("shoulders", p.Shoulders)
    return fields
}

// Apply merges the patch onto m, field by field.  Omitted fields are left
// untouched so a partial save never clears unrelated values.
func (p MeasurementPatch) Apply(m Measurements) Measurements {
    if p.Chest != nil {
        m.Chest = *p.Chest
    }
    if p.Waist != nil {
        m.Waist = *p.Waist
    }
    if p.Hips != nil {
        m.Hips = *p.Hips
    }
    if p.Length != nil {
        m.Length = *p.Length
    }
    if p.Inseam != nil {
        m.Inseam = *p.Inseam
    }
    if p.Shoulders != nil {
        m.Shoulders = *p.Shoulders
    }
    return m
}
