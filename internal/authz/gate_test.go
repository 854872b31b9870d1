package authz

import (
    "testing"

    "github.com/ateliermori/commission-api/internal/model"
)

var (
    owner     = Actor{ID: 7, Role: RoleClient}
    stranger  = Actor{ID: 8, Role: RoleClient}
    admin     = Actor{ID: 1, Role: RoleAdmin}
    anonymous = Actor{}
)

func TestCanReadCommission(t *testing.T) {
    cases := []struct {
        name  string
        actor Actor
        want  bool
    }{
        {"owner", owner, true},
        {"admin", admin, true},
        {"stranger", stranger, false},
        {"anonymous", anonymous, false},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            if got := CanReadCommission(tc.actor, owner.ID); got != tc.want {
                t.Fatalf("CanReadCommission(%v) = %v, want %v", tc.actor, got, tc.want)
            }
        })
    }
}

func TestCanTransitionStatus(t *testing.T) {
    cases := []struct {
        name     string
        actor    Actor
        from, to model.CommissionStatus
        want     bool
    }{
        {"admin pending to in progress", admin, model.StatusPending, model.StatusInProgress, true},
        {"admin completed back to pending", admin, model.StatusCompleted, model.StatusPending, true},
        {"admin anything to cancelled", admin, model.StatusInProgress, model.StatusCancelled, true},
        {"owner cancel while pending", owner, model.StatusPending, model.StatusCancelled, true},
        {"owner cancel while in progress", owner, model.StatusInProgress, model.StatusCancelled, true},
        {"owner cancel when completed", owner, model.StatusCompleted, model.StatusCancelled, false},
        {"owner cancel when already cancelled", owner, model.StatusCancelled, model.StatusCancelled, false},
        {"owner cannot complete", owner, model.StatusPending, model.StatusCompleted, false},
        {"stranger cannot transition at all", stranger, model.StatusPending, model.StatusCancelled, false},
        {"anonymous denied", anonymous, model.StatusPending, model.StatusInProgress, false},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            got := CanTransitionStatus(tc.actor, owner.ID, tc.from, tc.to)
            if got != tc.want {
                t.Fatalf("CanTransitionStatus(%v, %s -> %s) = %v, want %v",
                    tc.actor, tc.from, tc.to, got, tc.want)
            }
        })
    }
}

func TestCanEditCommissionContent(t *testing.T) {
    if !CanEditCommissionContent(owner, owner.ID) {
        t.Fatal("owner should be allowed to edit content")
    }
    // Status transitions are the admin's tool; content belongs to the owner.
    if CanEditCommissionContent(admin, owner.ID) {
        t.Fatal("admin must not edit content fields")
    }
    if CanEditCommissionContent(stranger, owner.ID) || CanEditCommissionContent(anonymous, owner.ID) {
        t.Fatal("non-owners must not edit content fields")
    }
}

func TestCanMarkMessageRead(t *testing.T) {
    adminSender := admin.ID
    ownerSender := owner.ID

    if !CanMarkMessageRead(owner, owner.ID, adminSender) {
        t.Fatal("owner should mark admin messages read")
    }
    if !CanMarkMessageRead(admin, owner.ID, ownerSender) {
        t.Fatal("admin should mark owner messages read")
    }
    if CanMarkMessageRead(owner, owner.ID, ownerSender) {
        t.Fatal("a sender must not mark their own message read")
    }
    if CanMarkMessageRead(stranger, owner.ID, adminSender) {
        t.Fatal("a stranger must not touch the conversation")
    }
}

func TestCanAccessProfile(t *testing.T) {
    if !CanAccessProfile(owner, owner.ID) {
        t.Fatal("owner should access their own profile")
    }
    // Admin identity grants no access to client body measurements.
    if CanAccessProfile(admin, owner.ID) {
        t.Fatal("admin must not read client measurement profiles")
    }
    if CanAccessProfile(anonymous, owner.ID) {
        t.Fatal("anonymous must not access profiles")
    }
}
