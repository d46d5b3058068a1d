// Package squads implements coaching-squad (clan) lifecycle, join
// protocol, facility upgrades and role management.
package squads

import "time"

type Privacy string

const (
	PrivacyOpen    Privacy = "open"
	PrivacyRequest Privacy = "request"
	PrivacyClosed  Privacy = "closed"
)

type Role string

const (
	RoleLeader   Role = "leader"
	RoleCoLeader Role = "co_leader"
	RoleMember   Role = "member"
)

type MemberStatus string

const (
	MemberActive   MemberStatus = "active"
	MemberInactive MemberStatus = "inactive"
)

type JoinRequestStatus string

const (
	RequestPending  JoinRequestStatus = "pending"
	RequestApproved JoinRequestStatus = "approved"
	RequestRejected JoinRequestStatus = "rejected"
)

type FacilityType string

const (
	FacilityTrainingEquipment FacilityType = "training_equipment"
	FacilitySpa               FacilityType = "spa"
	FacilityAnalysisRoom      FacilityType = "analysis_room"
	FacilityMedicalCenter     FacilityType = "medical_center"
)

// AllFacilityTypes is the fixed set initialized at level 0 on squad creation.
var AllFacilityTypes = []FacilityType{FacilityTrainingEquipment, FacilitySpa, FacilityAnalysisRoom, FacilityMedicalCenter}

// facilityBaseCost is spec.md §4.7's literal base-cost table.
var facilityBaseCost = map[FacilityType]int{
	FacilityTrainingEquipment: 5,
	FacilitySpa:               8,
	FacilityAnalysisRoom:      6,
	FacilityMedicalCenter:     7,
}

func IsValidFacilityType(f FacilityType) bool {
	_, ok := facilityBaseCost[f]
	return ok
}

// UpgradeCost is base_cost[type] * (current_level + 1).
func UpgradeCost(facility FacilityType, currentLevel int) int {
	return facilityBaseCost[facility] * (currentLevel + 1)
}

// SquadLevel is 1 + floor(sum(facility levels) / 4).
func SquadLevel(totalFacilityLevels int) int {
	return 1 + totalFacilityLevels/4
}

type Squad struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Tag           *string   `json:"tag,omitempty"`
	Description   string    `json:"description"`
	LeaderUserID  string    `json:"leader_user_id"`
	Privacy       Privacy   `json:"privacy"`
	TotalPoints   int       `json:"total_points"`
	UnspentPoints int       `json:"unspent_points"`
	Level         int       `json:"level"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type Member struct {
	SquadID           string       `json:"squad_id"`
	UserID            string       `json:"user_id"`
	Role              Role         `json:"role"`
	PointsContributed int          `json:"points_contributed"`
	Status            MemberStatus `json:"status"`
	JoinedAt          time.Time    `json:"joined_at"`
}

type JoinRequest struct {
	ID         string            `json:"id"`
	SquadID    string            `json:"squad_id"`
	UserID     string            `json:"user_id"`
	Status     JoinRequestStatus `json:"status"`
	CreatedAt  time.Time         `json:"created_at"`
	ResolvedAt *time.Time        `json:"resolved_at,omitempty"`
	ResolvedBy *string           `json:"resolved_by,omitempty"`
}

type Facility struct {
	SquadID string       `json:"squad_id"`
	Type    FacilityType `json:"type"`
	Level   int          `json:"level"`
}

// ActivityEvent is one row of the merged point-event/spend-transaction feed.
type ActivityEvent struct {
	Kind      string    `json:"kind"` // "earned" or "spent"
	SquadID   string    `json:"squad_id"`
	UserID    *string   `json:"user_id,omitempty"`
	Points    int       `json:"points"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}
