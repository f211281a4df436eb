package reduce

import (
	"sort"

	"github.com/dsearch/dsearch/reply"
)

// suggestion is one per-term spelling suggestion with its (possibly
// score-0-as-(-1)) score, per spec.md SS4.M.
type suggestion struct {
	text  string
	score float64
}

type termState struct {
	inIndex     bool
	order       []string
	suggestions map[string]*suggestion
}

// SpellCheckReducer merges N `_FT.SPELLCHECK`-shaped replies (spec.md
// SS4.M): a term reported in-index by any shard is omitted entirely;
// otherwise suggestions are unioned across shards with identical strings
// summed, normalized by total document count unless fullScoreInfo is set.
func SpellCheckReducer(perShard []ShardSpellCheck, fullScoreInfo bool) reply.Reply {
	terms := map[string]*termState{}
	var order []string
	var totalDocs int64

	for _, shard := range perShard {
		totalDocs += shard.DocCount
		for _, t := range shard.Terms {
			st, ok := terms[t.Term]
			if !ok {
				st = &termState{suggestions: map[string]*suggestion{}}
				terms[t.Term] = st
				order = append(order, t.Term)
			}
			if t.InIndex {
				st.inIndex = true
				continue
			}
			for _, s := range t.Suggestions {
				score := s.Score
				if score == 0 {
					score = -1 // spec.md SS4.M: present-but-zero survives dedup as -1
				}
				if existing, ok := st.suggestions[s.Text]; ok {
					existing.score += score
				} else {
					st.suggestions[s.Text] = &suggestion{text: s.Text, score: score}
					st.order = append(st.order, s.Text)
				}
			}
		}
	}

	var out []reply.Reply
	for _, term := range order {
		st := terms[term]
		if st.inIndex {
			continue
		}
		sorted := make([]*suggestion, 0, len(st.order))
		for _, s := range st.order {
			sorted = append(sorted, st.suggestions[s])
		}
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].score > sorted[j].score })

		var sugReplies []reply.Reply
		for _, s := range sorted {
			score := s.score
			if !fullScoreInfo && totalDocs > 0 {
				score /= float64(totalDocs)
			}
			sugReplies = append(sugReplies, reply.Array(reply.Double(score), reply.StringS(s.text)))
		}
		out = append(out, reply.Array(reply.StringS("TERM"), reply.StringS(term), reply.Array(sugReplies...)))
	}

	if fullScoreInfo {
		return reply.Array(reply.Array(out...), reply.Integer(totalDocs))
	}
	return reply.Array(out...)
}

// ShardSpellCheck is one shard's decoded _FT.SPELLCHECK reply, already
// peeled off the wire reply by the RESP2/RESP3 adapter (spec.md SS6).
type ShardSpellCheck struct {
	DocCount int64
	Terms    []SpellCheckTerm
}

type SpellCheckTerm struct {
	Term        string
	InIndex     bool
	Suggestions []SpellCheckSuggestion
}

type SpellCheckSuggestion struct {
	Text  string
	Score float64
}
