package npc

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/larkspur-games/chronicle/internal/events"
	"github.com/larkspur-games/chronicle/internal/platform/id"
)

// ErrUnknownNPC indicates an operation referenced an NPC absent from the roster.
var ErrUnknownNPC = errors.New("npc is not in the roster")

// Outcome reports what AddOrUpdate did with a candidate.
type Outcome string

const (
	// OutcomeNew indicates the candidate created a roster record.
	OutcomeNew Outcome = "new"
	// OutcomeUpdated indicates the candidate merged into an existing record.
	OutcomeUpdated Outcome = "updated"
)

// Eviction guard constants for AutoCleanupAbsent.
const (
	// minHistoryForCleanup is the hard floor: shorter sessions never evict.
	minHistoryForCleanup = 5
	// hardProtectionTurns protects NPCs mentioned in the most recent turns
	// regardless of the caller's window.
	hardProtectionTurns = 3
	// DefaultCleanupWindow is the recency window in turns.
	DefaultCleanupWindow = 30
)

// Option configures a Roster.
type Option func(*Roster)

// WithClock overrides the time source, primarily for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Roster) { r.now = now }
}

// Roster owns the rich NPC records for one session.
type Roster struct {
	sessionID string
	bus       *events.Bus
	now       func() time.Time
	npcs      []*NPC
}

// NewRoster creates an empty roster. The bus may be nil; lifecycle events are
// then dropped.
func NewRoster(sessionID string, bus *events.Bus, opts ...Option) *Roster {
	r := &Roster{
		sessionID: sessionID,
		bus:       bus,
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Load replaces the roster contents, used when restoring a session.
func (r *Roster) Load(records []NPC) {
	r.npcs = r.npcs[:0]
	for _, record := range records {
		copied := record
		r.npcs = append(r.npcs, &copied)
	}
}

// List returns copies of every record in insertion order.
func (r *Roster) List() []NPC {
	out := make([]NPC, 0, len(r.npcs))
	for _, record := range r.npcs {
		out = append(out, *record)
	}
	return out
}

// Names returns every roster name in sorted order, used to surface valid
// identifiers on lookup misses.
func (r *Roster) Names() []string {
	names := make([]string, 0, len(r.npcs))
	for _, record := range r.npcs {
		names = append(names, record.Name)
	}
	sort.Strings(names)
	return names
}

// Get resolves a record by id, falling back to exact name match. The name
// fallback can conflate two NPCs sharing a name; that ambiguity is accepted.
func (r *Roster) Get(idOrName string) (*NPC, bool) {
	for _, record := range r.npcs {
		if record.ID == idOrName {
			return record, true
		}
	}
	for _, record := range r.npcs {
		if record.Name == idOrName {
			return record, true
		}
	}
	return nil, false
}

func (r *Roster) lookupErr(idOrName string) error {
	return fmt.Errorf("%w: %q (known: %s)", ErrUnknownNPC, idOrName, strings.Join(r.Names(), ", "))
}

func (r *Roster) publish(topic events.Topic, name string) {
	if r.bus == nil {
		return
	}
	r.bus.Publish(events.Event{Topic: topic, SessionID: r.sessionID, Subject: name})
}

// AddOrUpdate resolves a candidate against the roster by id-or-name and
// either inserts a new record or merges into the match.
//
// Merge precedence: identity and lifecycle fields (id, favorite, firstSeen,
// interactionCount, notes, tags) always keep the existing value; the stat
// block takes the candidate's values; descriptive fields prefer the candidate
// and fall back to the existing value; relationship changes only when the
// candidate explicitly supplies one.
func (r *Roster) AddOrUpdate(candidate Candidate) (Outcome, *NPC, error) {
	candidate = candidate.Normalize()
	if candidate.Name == "" {
		return "", nil, fmt.Errorf("candidate name is required")
	}

	existing, ok := r.Get(candidate.Name)
	if !ok {
		record, err := r.insert(candidate)
		if err != nil {
			return "", nil, err
		}
		return OutcomeNew, record, nil
	}

	r.merge(existing, candidate)
	r.publish(events.TopicNPCUpdated, existing.Name)
	return OutcomeUpdated, existing, nil
}

func (r *Roster) insert(candidate Candidate) (*NPC, error) {
	npcID, err := id.NewID()
	if err != nil {
		return nil, fmt.Errorf("generate npc id: %w", err)
	}

	now := r.now()
	record := &NPC{
		ID:        npcID,
		Name:      candidate.Name,
		FirstSeen: now,
		LastSeen:  now,

		InteractionCount: 1,
	}
	applyStats(record, candidate)
	applyDescriptive(record, candidate)

	if candidate.Relationship != nil {
		record.Relationship = ClampRelationship(*candidate.Relationship)
		record.Attitude = AttitudeFor(record.Relationship)
	} else {
		record.Relationship = 0
		record.Attitude = AttitudeNeutral
		if candidate.Attitude != "" {
			record.Attitude = Attitude(candidate.Attitude)
		}
	}

	r.npcs = append(r.npcs, record)
	r.publish(events.TopicNPCAdded, record.Name)
	return record, nil
}

func (r *Roster) merge(existing *NPC, candidate Candidate) {
	applyStats(existing, candidate)
	applyDescriptive(existing, candidate)

	if candidate.Relationship != nil {
		existing.Relationship = ClampRelationship(*candidate.Relationship)
		existing.Attitude = AttitudeFor(existing.Relationship)
	} else if candidate.Attitude != "" {
		existing.Attitude = Attitude(candidate.Attitude)
	}

	existing.LastSeen = r.now()
}

func applyStats(record *NPC, candidate Candidate) {
	record.AC = candidate.AC
	record.MV = candidate.MV
	record.HD = candidate.HD
	record.HP = candidate.HP
	record.MaxHP = candidate.MaxHP
	record.THAC0 = candidate.THAC0
	record.AT = candidate.AT
	record.Dmg = candidate.Dmg
	record.SZ = candidate.SZ
	record.Int = candidate.Int
	record.AL = candidate.AL
	record.ML = candidate.ML
	record.XP = candidate.XP
	record.SA = candidate.SA
	record.SD = candidate.SD
	record.SW = candidate.SW
	record.SP = candidate.SP
	record.MR = candidate.MR
}

// applyDescriptive copies descriptive fields that the candidate supplies,
// leaving existing values in place when the candidate omits them.
func applyDescriptive(record *NPC, candidate Candidate) {
	prefer := func(field *string, value string) {
		if strings.TrimSpace(value) != "" {
			*field = value
		}
	}
	prefer(&record.Appearance, candidate.Appearance)
	prefer(&record.Personality, candidate.Personality)
	prefer(&record.Background, candidate.Background)
	prefer(&record.Motivation, candidate.Motivation)
	prefer(&record.Equipment, candidate.Equipment)
	prefer(&record.Inventory, candidate.Inventory)
	prefer(&record.Description, candidate.Description)
}

// Remove deletes a record by id or name.
func (r *Roster) Remove(idOrName string) error {
	for i, record := range r.npcs {
		if record.ID == idOrName || record.Name == idOrName {
			name := record.Name
			r.npcs = append(r.npcs[:i], r.npcs[i+1:]...)
			r.publish(events.TopicNPCRemoved, name)
			return nil
		}
	}
	return r.lookupErr(idOrName)
}

// ToggleFavorite flips the favorite flag and returns the new value.
func (r *Roster) ToggleFavorite(idOrName string) (bool, error) {
	record, ok := r.Get(idOrName)
	if !ok {
		return false, r.lookupErr(idOrName)
	}
	record.Favorite = !record.Favorite
	return record.Favorite, nil
}

// UpdateRelationship sets the relationship value, clamped to [-100, 100], and
// derives the attitude tier.
func (r *Roster) UpdateRelationship(idOrName string, value int) (*NPC, error) {
	record, ok := r.Get(idOrName)
	if !ok {
		return nil, r.lookupErr(idOrName)
	}
	record.Relationship = ClampRelationship(value)
	record.Attitude = AttitudeFor(record.Relationship)
	r.publish(events.TopicNPCUpdated, record.Name)
	return record, nil
}

// RecordInteraction bumps the interaction count and refreshes LastSeen.
func (r *Roster) RecordInteraction(idOrName string) error {
	record, ok := r.Get(idOrName)
	if !ok {
		return r.lookupErr(idOrName)
	}
	record.InteractionCount++
	record.LastSeen = r.now()
	return nil
}

// UpdateNotes replaces the user notes on a record.
func (r *Roster) UpdateNotes(idOrName, notes string) error {
	record, ok := r.Get(idOrName)
	if !ok {
		return r.lookupErr(idOrName)
	}
	record.Notes = notes
	return nil
}

// ToggleTag adds or removes a tag and reports whether it is now present.
func (r *Roster) ToggleTag(idOrName, tag string) (bool, error) {
	record, ok := r.Get(idOrName)
	if !ok {
		return false, r.lookupErr(idOrName)
	}
	for i, existing := range record.Tags {
		if existing == tag {
			record.Tags = append(record.Tags[:i], record.Tags[i+1:]...)
			return false, nil
		}
	}
	record.Tags = append(record.Tags, tag)
	return true, nil
}

// AutoCleanupAbsent evicts NPCs the story has stopped mentioning. history is
// the full turn log in chronological order, both user and generated sides;
// window bounds how far back a mention still counts. Returns evicted names.
//
// An NPC survives when any of these hold: it is favorited, it is in
// excludeNames (added this same turn), it is mentioned in the last three
// turns, or it is mentioned anywhere in the window — by tag in any dialect or
// by plain substring occurrence of its name.
func (r *Roster) AutoCleanupAbsent(history []string, window int, excludeNames []string) []string {
	if len(history) < minHistoryForCleanup {
		return nil
	}
	if window <= 0 {
		window = DefaultCleanupWindow
	}

	excluded := make(map[string]bool, len(excludeNames))
	for _, name := range excludeNames {
		excluded[name] = true
	}

	windowed := history
	if len(windowed) > window {
		windowed = windowed[len(windowed)-window:]
	}
	lastTurns := history
	if len(lastTurns) > hardProtectionTurns {
		lastTurns = lastTurns[len(lastTurns)-hardProtectionTurns:]
	}

	mentioned := r.mentionSet(windowed)
	protected := r.mentionSet(lastTurns)

	var evicted []string
	kept := r.npcs[:0]
	for _, record := range r.npcs {
		if record.Favorite || excluded[record.Name] || protected[record.Name] || mentioned[record.Name] {
			kept = append(kept, record)
			continue
		}
		evicted = append(evicted, record.Name)
	}
	r.npcs = kept

	for _, name := range evicted {
		r.publish(events.TopicNPCRemoved, name)
	}
	return evicted
}

// mentionSet collects roster names mentioned in the given turns, via dialect
// tags or plain substring occurrence. Substring recovery matters because the
// model usually refers to a known NPC by name without re-emitting its stat
// block.
func (r *Roster) mentionSet(turns []string) map[string]bool {
	mentioned := make(map[string]bool)
	for _, text := range turns {
		for name := range MentionedNames(text) {
			mentioned[name] = true
		}
		for _, record := range r.npcs {
			if record.Name != "" && strings.Contains(text, record.Name) {
				mentioned[record.Name] = true
			}
		}
	}
	return mentioned
}
