package domain

import "time"

type PickTaskStatus string

const (
	PickTaskStatusAssigned   PickTaskStatus = "ASSIGNED"
	PickTaskStatusInProgress PickTaskStatus = "IN_PROGRESS"
	PickTaskStatusCompleted  PickTaskStatus = "COMPLETED"
	PickTaskStatusCancelled  PickTaskStatus = "CANCELLED"
)

func (s PickTaskStatus) CanTransitionTo(next PickTaskStatus) bool {
	switch s {
	case PickTaskStatusAssigned:
		return next == PickTaskStatusInProgress || next == PickTaskStatusCancelled
	case PickTaskStatusInProgress:
		return next == PickTaskStatusCompleted || next == PickTaskStatusCancelled
	default:
		return false
	}
}

// Open reports whether the task still holds a reservation.
func (s PickTaskStatus) Open() bool {
	return s == PickTaskStatusAssigned || s == PickTaskStatusInProgress
}

// PickTask is the unit of picking work for one allocation of an order line.
type PickTask struct {
	ID          string
	WarehouseID string
	OrderID     string
	ProductID   string
	LocationID  string
	InventoryID string
	Quantity    int
	AssignedTo  string
	Status      PickTaskStatus
	Notes       string
	CompletedAt *time.Time
	Version     uint64 // optimistic locking
	DeletedAt   *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (t *PickTask) Transition(next PickTaskStatus, at time.Time) error {
	if !t.Status.CanTransitionTo(next) {
		return IllegalTransitionf("pick task %s: cannot move from %s to %s", t.ID, t.Status, next)
	}
	if next == PickTaskStatusCompleted && t.CompletedAt == nil {
		completed := at
		t.CompletedAt = &completed
	}
	t.Status = next
	t.UpdatedAt = at
	return nil
}

// AllCompleted reports whether tasks is non-empty and every task is COMPLETED.
func AllCompleted(tasks []PickTask) bool {
	if len(tasks) == 0 {
		return false
	}
	for _, t := range tasks {
		if t.Status != PickTaskStatusCompleted {
			return false
		}
	}
	return true
}
