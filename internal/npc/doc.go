// Package npc detects NPC stat blocks inside narrative text and manages the
// long-lived NPC roster.
//
// Detection tolerates three tag dialects that language models emit
// interchangeably: the AD&D-style stat line, an XML-attribute form, and a
// pipe-delimited form. All three are always applied to every turn and feed a
// single canonical candidate shape. The roster merges candidates into
// persistent records and evicts NPCs the story has stopped mentioning.
package npc
