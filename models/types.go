package models

import "time"

// Event status constants
const (
	EventDraft         = "draft"
	EventProposalsOpen = "proposals_open"
	EventVotingOpen    = "voting_open"
	EventScheduled     = "scheduled"
	EventLive          = "live"
	EventConcluded     = "concluded"
)

// Session tracks
const (
	TrackGovernance     = "governance"
	TrackTechnical      = "technical"
	TrackDeFi           = "defi"
	TrackSocial         = "social"
	TrackCreative       = "creative"
	TrackSustainability = "sustainability"
)

// Session formats
const (
	FormatTalk       = "talk"
	FormatWorkshop   = "workshop"
	FormatDiscussion = "discussion"
	FormatPanel      = "panel"
	FormatDemo       = "demo"
)

// Time slot types. Only SlotSession accepts placements.
const (
	SlotSession = "session"
	SlotBreak   = "break"
	SlotLocked  = "locked"
)

// Vote kinds
const (
	VotePre        = "pre"
	VoteAttendance = "attendance"
)

// Request types

type CreateEventRequest struct {
	Name                  string `json:"name"`
	Description           string `json:"description"`
	Timezone              string `json:"timezone"`
	PreVoteCredits        int    `json:"pre_vote_credits"`
	AttendanceVoteCredits int    `json:"attendance_vote_credits"`
	SessionBudget         string `json:"session_budget"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type JoinEventRequest struct {
	DisplayName string `json:"display_name"`
}

type ProposeSessionRequest struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	Track           string `json:"track"`
	Format          string `json:"format"`
	DurationMinutes int    `json:"duration_minutes"`
}

type SetVotesRequest struct {
	Votes int `json:"votes"`
}

type AttendanceVoteRequest struct {
	CardID string `json:"card_id"`
	Votes  int    `json:"votes"`
}

type VenueRequest struct {
	Name     string   `json:"name"`
	Capacity int      `json:"capacity"`
	Features []string `json:"features"`
}

type TimeSlotRequest struct {
	Day   int    `json:"day"`
	Start string `json:"start"`
	End   string `json:"end"`
	Type  string `json:"type"`
	Label string `json:"label"`
}

type PlaceSessionRequest struct {
	SessionID string `json:"session_id"`
	VenueID   string `json:"venue_id"`
	SlotID    string `json:"slot_id"`
}

type UnplaceSessionRequest struct {
	SessionID string `json:"session_id"`
}

// Response types

type CreateEventResponse struct {
	EventID      string `json:"event_id"`
	Slug         string `json:"slug"`
	OrganizerKey string `json:"organizer_key"`
	EventURL     string `json:"event_url"`
}

type JoinEventResponse struct {
	ParticipantID    string `json:"participant_id"`
	ParticipantToken string `json:"participant_token"`
}

// ParticipantSummary is a directory entry. The token is never listed.
type ParticipantSummary struct {
	ID               string    `json:"id"`
	DisplayName      string    `json:"display_name"`
	SessionsProposed int       `json:"sessions_proposed"`
	CreditsSpent     int       `json:"credits_spent"`
	JoinedAt         time.Time `json:"joined_at"`
}

// ParticipantDirectoryResponse counts the whole event even when Participants
// is filtered by a search.
type ParticipantDirectoryResponse struct {
	Total        int                  `json:"total"`
	Voted        int                  `json:"voted"`
	Hosting      int                  `json:"hosting"`
	Participants []ParticipantSummary `json:"participants"`
}

type CreatedResponse struct {
	ID string `json:"id"`
}

type SetVotesResponse struct {
	Allocation VoteAllocation `json:"allocation"`
	Balance    CreditBudget   `json:"balance"`
}

type CreditsResponse struct {
	Balance     CreditBudget     `json:"balance"`
	Allocations []VoteAllocation `json:"allocations"`
}

type AttendanceVoteResponse struct {
	CardID      string `json:"card_id"`
	SessionID   string `json:"session_id"`
	Votes       int    `json:"votes"`
	CreditsCost int    `json:"credits_cost"`
	Remaining   int    `json:"remaining"`
}

type ScheduleResponse struct {
	EventID     string             `json:"event_id"`
	Published   bool               `json:"published"`
	Editing     bool               `json:"editing"`
	Venues      []Venue            `json:"venues"`
	Slots       []TimeSlot         `json:"slots"`
	Scheduled   []Session          `json:"scheduled"`
	Unscheduled []Session          `json:"unscheduled"`
	Conflicts   []ScheduleConflict `json:"conflicts"`
	Summary     ScheduleSummary    `json:"summary"`
}

type ScheduleSummary struct {
	Total       int `json:"total"`
	Scheduled   int `json:"scheduled"`
	Unscheduled int `json:"unscheduled"`
	Conflicts   int `json:"conflicts"`
}

type FundingResponse struct {
	EventID string         `json:"event_id"`
	Pool    string         `json:"pool"`
	Kind    string         `json:"kind"`
	Shares  []FundingShare `json:"shares"`
}

// Domain types

type Event struct {
	ID                    string    `json:"id"`
	Name                  string    `json:"name"`
	Slug                  string    `json:"slug"`
	Description           string    `json:"description"`
	Timezone              string    `json:"timezone"`
	Status                string    `json:"status"`
	PreVoteCredits        int       `json:"pre_vote_credits"`
	AttendanceVoteCredits int       `json:"attendance_vote_credits"`
	SessionBudget         string    `json:"session_budget"`
	SchedulePublished     bool      `json:"schedule_published"`
	ScheduleEditing       bool      `json:"schedule_editing"`
	CreatedAt             time.Time `json:"created_at"`
}

type Participant struct {
	ID          string    `json:"id"`
	EventID     string    `json:"event_id"`
	DisplayName string    `json:"display_name"`
	Token       string    `json:"-"` // Never expose in JSON
	CreatedAt   time.Time `json:"created_at"`
}

// Session is a proposed talk, workshop or similar. VenueID and SlotID are
// either both set (scheduled) or both empty (unscheduled). Votes is the
// expected-attendance proxy.
type Session struct {
	ID              string    `json:"id"`
	EventID         string    `json:"event_id"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	Host            string    `json:"host"`
	Track           string    `json:"track"`
	Format          string    `json:"format"`
	DurationMinutes int       `json:"duration_minutes"`
	Votes           int       `json:"votes"`
	VenueID         string    `json:"venue_id,omitempty"`
	SlotID          string    `json:"slot_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// Scheduled reports whether the session occupies a grid cell.
func (s Session) Scheduled() bool {
	return s.VenueID != "" && s.SlotID != ""
}

type Venue struct {
	ID       string   `json:"id"`
	EventID  string   `json:"event_id"`
	Name     string   `json:"name"`
	Capacity int      `json:"capacity"`
	Features []string `json:"features"`
}

type TimeSlot struct {
	ID      string `json:"id"`
	EventID string `json:"event_id"`
	Day     int    `json:"day"`
	Start   string `json:"start"`
	End     string `json:"end"`
	Type    string `json:"type"`
	Label   string `json:"label,omitempty"`
}

// Bookable reports whether sessions may be placed into the slot.
func (t TimeSlot) Bookable() bool {
	return t.Type == SlotSession
}

type VoteAllocation struct {
	SessionID  string    `json:"session_id"`
	VoteCount  int       `json:"vote_count"`
	CreditCost int       `json:"credit_cost"`
	UpdatedAt  time.Time `json:"updated_at,omitempty"`
}

// StoredVote is one persisted allocation row. VoterID is a participant id for
// pre-event votes and a card id for attendance votes.
type StoredVote struct {
	EventID   string
	VoterID   string
	SessionID string
	Kind      string
	VoteCount int
	UpdatedAt time.Time
}

type CreditBudget struct {
	TotalCredits     int `json:"total_credits"`
	SpentCredits     int `json:"spent_credits"`
	RemainingCredits int `json:"remaining_credits"`
}

type ScheduleConflict struct {
	Session Session `json:"session"`
	Venue   Venue   `json:"venue"`
	Reason  string  `json:"reason"`
}

type FundingShare struct {
	SessionID  string  `json:"session_id"`
	Title      string  `json:"title"`
	Voters     int     `json:"voters"`
	Credits    int     `json:"credits"`
	Score      float64 `json:"qf_score"`
	Percentage float64 `json:"percentage"`
	Amount     string  `json:"amount"`
}

// Error responses

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type InsufficientCreditsResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Shortfall int    `json:"shortfall"`
	Remaining int    `json:"remaining"`
}
