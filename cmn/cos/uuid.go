// Package cos provides common low-level types and utilities shared by
// every engine package: ID generation, name validation, multi-error
// accumulation.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package cos

import (
	"crypto/rand"
	"fmt"
	"sync"

	"github.com/teris-io/shortid"
	"go.uber.org/atomic"
)

// Alphabet for generating short, dense, URL-safe correlation IDs. Cursor
// IDs (which must be a nonzero uint64, spec.md SS4.F) are generated
// separately by the cursor package.
const uuidABC = "-5nZJDft6LuzsjGNpPwY7rQa39vehq4i1cV2FROo8yHSlC0BUEdWbIxMmTgKXAk_"

const (
	LenShortID  = 9
	tooLongID   = 32
	tooLongName = 64
)

const (
	mayOnlyContain = "may only contain letters, numbers, dashes (-), underscores (_)"
	OnlyNice       = "must be less than 32 characters and " + mayOnlyContain
	OnlyPlus       = mayOnlyContain + ", and dots (.)"
)

var (
	sidOnce sync.Once
	sid     *shortid.Shortid
	rtie    atomic.Uint32
)

func initSid() {
	s, err := shortid.New(4, uuidABC, uint64(0xC0FFEE))
	if err != nil {
		panic(err) // fixed, valid alphabet+seed: cannot fail
	}
	sid = s
}

// GenID returns a short, dense, id-like process-local correlation string.
// No other package of this module calls it.
func GenID() string {
	sidOnce.Do(initSid)
	uuid, err := sid.Generate()
	if err != nil {
		// exhausted worker-tick space; fall back to a crypto-random tie
		return GenBEID(randU64(), LenShortID)
	}
	var h, t string
	if !isAlpha(uuid[0]) {
		tie := int(rtie.Add(1))
		h = string(rune('A' + tie%26))
	}
	if c := uuid[len(uuid)-1]; c == '-' || c == '_' {
		tie := int(rtie.Add(1))
		t = string(rune('a' + tie%26))
	}
	return h + uuid + t
}

const (
	letterIdxBits = 6
	letterIdxMask = 1<<letterIdxBits - 1
)

const LetterRunes = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
const LenRunes = len(LetterRunes)

// GenBEID deterministically derives an l-byte "best-effort id" from val,
// for callers that already have a unique uint64 (a hash, a counter) and
// just need it rendered as an identifier.
func GenBEID(val uint64, l int) string {
	b := make([]byte, l)
	for i := 0; i < l; i++ {
		idx := int(val & letterIdxMask)
		if idx >= LenRunes {
			idx -= LenRunes
		}
		b[i] = LetterRunes[idx]
		val >>= letterIdxBits
	}
	return string(b)
}

func randU64() uint64 {
	var b [8]byte
	_, _ = rand.Read(b[:])
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v
}

func IsValidID(id string) bool {
	return len(id) >= LenShortID && IsAlphaNice(id)
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// IsAlphaNice: letters and digits, with '-'/'_' permitted except at the
// ends. Used to validate index names (spec.md SS6 "ERR Unknown index name").
func IsAlphaNice(s string) bool {
	l := len(s)
	if l > tooLongID {
		return false
	}
	for i := 0; i < l; i++ {
		c := s[i]
		if isAlpha(c) || (c >= '0' && c <= '9') {
			continue
		}
		if c != '-' && c != '_' {
			return false
		}
		if i == 0 || i == l-1 {
			return false
		}
	}
	return true
}

// CheckAlphaPlus additionally allows internal '.' (but never "..") and a
// longer max length; used for alias names (FT.ALIASADD/UPDATE/DEL).
func CheckAlphaPlus(s, tag string) error {
	l := len(s)
	if l > tooLongName {
		return fmt.Errorf("%s is too long: %d > %d (max length)", tag, l, tooLongName)
	}
	for i := 0; i < l; i++ {
		c := s[i]
		if isAlpha(c) || (c >= '0' && c <= '9') || c == '-' || c == '_' {
			continue
		}
		if c != '.' {
			return fmt.Errorf("%s is invalid: %s", tag, OnlyPlus)
		}
		if i < l-1 && s[i+1] == '.' {
			return fmt.Errorf("%s is invalid: %s", tag, OnlyPlus)
		}
	}
	return nil
}

// GenTie returns a 3-character tie-breaker derived from a process-wide
// counter. No other package of this module calls it.
func GenTie() string {
	tie := rtie.Add(1)
	b0 := uuidABC[tie&0x3f]
	b1 := uuidABC[^tie&0x3f]
	b2 := uuidABC[(tie>>2)&0x3f]
	return string([]byte{b0, b1, b2})
}
