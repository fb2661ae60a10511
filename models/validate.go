package models

import "slices"

// MaxVotesPerSession bounds a single allocation. Its cost is far above any
// realistic credit budget.
const MaxVotesPerSession = 10000

var (
	Statuses  = []string{EventDraft, EventProposalsOpen, EventVotingOpen, EventScheduled, EventLive, EventConcluded}
	Tracks    = []string{TrackGovernance, TrackTechnical, TrackDeFi, TrackSocial, TrackCreative, TrackSustainability}
	Formats   = []string{FormatTalk, FormatWorkshop, FormatDiscussion, FormatPanel, FormatDemo}
	SlotTypes = []string{SlotSession, SlotBreak, SlotLocked}
)

func ValidStatus(s string) bool   { return slices.Contains(Statuses, s) }
func ValidTrack(s string) bool    { return slices.Contains(Tracks, s) }
func ValidFormat(s string) bool   { return slices.Contains(Formats, s) }
func ValidSlotType(s string) bool { return slices.Contains(SlotTypes, s) }
