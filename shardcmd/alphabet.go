// Package shardcmd carries the SS6 external interface contract: the
// static command alphabet the core consumes/emits to shards, each with
// its key_position, and the coordinator-injected argument markers
// (SLOTS, COORD_DISPATCH_TIME). This is the one piece of "external"
// surface the core packages directly construct (the physical RESP2/RESP3
// transport and the host's command dispatcher remain out of scope).
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package shardcmd

// KeyPosition selects which argument of a command is the sharding key:
// 1 or 2 (1-indexed argument position) or Broadcast.
type KeyPosition int

const Broadcast KeyPosition = -1

const (
	Search        = "_FT.SEARCH"
	Aggregate     = "_FT.AGGREGATE"
	Info          = "_FT.INFO"
	SpellCheck    = "_FT.SPELLCHECK"
	CursorRead    = "_FT.CURSOR READ"
	CursorDel     = "_FT.CURSOR DEL"
	CursorProfile = "_FT.CURSOR PROFILE"
	Del           = "_FT.DEL"
	Get           = "_FT.GET"
	MGet          = "_FT.MGET"
	Create        = "_FT.CREATE"
	Drop          = "_FT.DROP"
	Alter         = "_FT.ALTER"
	AliasAdd      = "_FT.ALIASADD"
	AliasUpdate   = "_FT.ALIASUPDATE"
	AliasDel      = "_FT.ALIASDEL"
	SugAdd        = "_FT.SUGADD"
	SugGet        = "_FT.SUGGET"
	SugDel        = "_FT.SUGDEL"
	SugLen        = "_FT.SUGLEN"
	DictAdd       = "_FT.DICTADD"
	DictDel       = "_FT.DICTDEL"
	SynUpdate     = "_FT.SYNUPDATE"
	SynForceUpdate = "_FT.SYNFORCEUPDATE"
)

var keyPositions = map[string]KeyPosition{
	Search:         1,
	Aggregate:      1,
	Info:           1,
	SpellCheck:     1,
	CursorRead:     Broadcast, // routed by shard id embedded in the cursor, not a key arg
	CursorDel:      Broadcast,
	CursorProfile:  Broadcast,
	Del:            1,
	Get:            1,
	MGet:           Broadcast,
	Create:         1,
	Drop:           1,
	Alter:          1,
	AliasAdd:       2,
	AliasUpdate:    2,
	AliasDel:       1,
	SugAdd:         1,
	SugGet:         1,
	SugDel:         1,
	SugLen:         1,
	DictAdd:        1,
	DictDel:        1,
	SynUpdate:      1,
	SynForceUpdate: 1,
}

// KeyPositionOf returns the static key_position for a command name and
// whether it is known to the alphabet.
func KeyPositionOf(name string) (KeyPosition, bool) {
	kp, ok := keyPositions[name]
	return kp, ok
}
