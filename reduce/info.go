package reduce

import (
	"errors"

	"github.com/dsearch/dsearch/cmn/cos"
	"github.com/dsearch/dsearch/reply"
)

// FieldRule is one top-level _FT.INFO field's merge rule (spec.md SS4.L).
type FieldRule int

const (
	WholeSum FieldRule = iota
	DoubleSum
	DoubleAverage
	Max
)

// FieldSpec names one field and how to merge it across shard replies.
type FieldSpec struct {
	Name string
	Rule FieldRule
}

// Special fields take the first non-null value seen, by shard iteration
// order, instead of being merged numerically.
var specialFields = map[string]bool{
	"index_name":        true,
	"attributes":        true,
	"index_definition":  true,
	"index_options":     true,
	"stopwords_list":    true,
}

// nestedSubMaps are recursively merged with their own static spec tables.
var nestedSubMaps = map[string][]FieldSpec{
	"gc_stats": {
		{"bytes_collected", WholeSum},
		{"total_ms_run", WholeSum},
		{"total_cycles", WholeSum},
		{"average_cycle_time_ms", DoubleAverage}, // recomputed post-merge, see below
	},
	"cursor_stats": {
		{"global_idle", WholeSum},
		{"global_total", WholeSum},
		{"index_capacity", Max},
		{"index_total", WholeSum},
	},
	"dialect_stats": {
		{"dialect_1", WholeSum},
		{"dialect_2", WholeSum},
		{"dialect_3", WholeSum},
		{"dialect_4", WholeSum},
	},
}

var topLevelFields = []FieldSpec{
	{"num_docs", WholeSum},
	{"num_terms", WholeSum},
	{"num_records", WholeSum},
	{"inverted_sz_mb", DoubleSum},
	{"vector_index_sz_mb", DoubleSum},
	{"total_inverted_index_blocks", WholeSum},
	{"offset_vectors_sz_mb", DoubleSum},
	{"doc_table_size_mb", DoubleSum},
	{"sortable_values_size_mb", DoubleSum},
	{"key_table_size_mb", DoubleSum},
	{"records_per_doc_avg", DoubleAverage},
	{"bytes_per_record_avg", DoubleAverage},
	{"offsets_per_term_avg", DoubleAverage},
	{"offset_bits_per_record_avg", DoubleAverage},
	{"percent_indexed", Max},
	{"number_of_uses", WholeSum},
	{"total_indexing_time", DoubleSum},
	{"indexing_failures", WholeSum},
}

// InfoReducer merges N _FT.INFO replies (reply.Map values) into one,
// applying the static field-spec table at top level and within each
// nested sub-map, and taking the first non-null value for special fields
// (spec.md SS4.L). field_statistics is length-checked across shards and
// emitted as the first shard's array (see mergeFieldStatistics).
func InfoReducer(replies []reply.Reply) (reply.Reply, error) {
	var successes []reply.Reply
	firstErr := reply.Nil()
	for _, r := range replies {
		if r.IsError() {
			if firstErr.IsNil() {
				firstErr = r
			}
			continue
		}
		successes = append(successes, r)
	}
	if len(successes) == 0 {
		if !firstErr.IsNil() {
			return firstErr, nil
		}
		return reply.Nil(), cos.ErrNoResponses
	}

	out := mergeFields(successes, topLevelFields)

	for subMap, spec := range nestedSubMaps {
		var subs []reply.Reply
		for _, r := range successes {
			if v, ok := r.MapGet(subMap); ok {
				subs = append(subs, v)
			}
		}
		if len(subs) == 0 {
			continue
		}
		merged := reply.Map(mergeFields(subs, spec)...)
		if subMap == "gc_stats" {
			merged = recomputeAverageCycleTime(merged)
		}
		out = append(out, reply.StringS(subMap), merged)
	}

	for name := range specialFields {
		for _, r := range successes {
			if v, ok := r.MapGet(name); ok && !v.IsNil() {
				out = append(out, reply.StringS(name), v)
				break
			}
		}
	}

	if merged, err := mergeFieldStatistics(successes); err != nil {
		return reply.Nil(), err
	} else if !merged.IsNil() {
		out = append(out, reply.StringS("field_statistics"), merged)
	}

	return reply.Map(out...), nil
}

func mergeFields(replies []reply.Reply, specs []FieldSpec) []reply.Reply {
	var out []reply.Reply
	for _, spec := range specs {
		var sum, max float64
		var sumCount int
		var haveMax bool
		var isInt bool
		for _, r := range replies {
			v, ok := r.MapGet(spec.Name)
			if !ok {
				continue
			}
			var n float64
			switch v.Type() {
			case reply.TInteger:
				n = float64(v.Int())
				isInt = true
			case reply.TDouble:
				n = v.Dbl()
			default:
				continue
			}
			switch spec.Rule {
			case WholeSum, DoubleSum:
				sum += n
			case DoubleAverage:
				sum += n
				sumCount++
			case Max:
				if !haveMax || n > max {
					max = n
					haveMax = true
				}
			}
		}
		var val reply.Reply
		switch spec.Rule {
		case WholeSum:
			val = reply.Integer(int64(sum))
		case DoubleSum:
			val = reply.Double(sum)
		case DoubleAverage:
			if sumCount == 0 {
				val = reply.Double(0)
			} else {
				val = reply.Double(sum / float64(sumCount))
			}
		case Max:
			if isInt {
				val = reply.Integer(int64(max))
			} else {
				val = reply.Double(max)
			}
		}
		out = append(out, reply.StringS(spec.Name), val)
	}
	return out
}

// recomputeAverageCycleTime replaces the DoubleAverage placeholder for
// gc_stats.average_cycle_time_ms with total_ms_run/total_cycles computed
// from the already-merged sums -- averaging the per-shard averages would
// be meaningless (spec.md SS4.L).
func recomputeAverageCycleTime(merged reply.Reply) reply.Reply {
	totalMs, _ := merged.MapGet("total_ms_run")
	totalCycles, _ := merged.MapGet("total_cycles")
	var avg float64
	if totalCycles.Int() != 0 {
		avg = float64(totalMs.Int()) / float64(totalCycles.Int())
	}
	elems := merged.Elems()
	out := make([]reply.Reply, 0, len(elems))
	for i := 0; i+1 < len(elems); i += 2 {
		if elems[i].Str() == "average_cycle_time_ms" {
			out = append(out, elems[i], reply.Double(avg))
			continue
		}
		out = append(out, elems[i], elems[i+1])
	}
	return reply.Map(out...)
}

// mergeFieldStatistics checks that every shard's field_statistics array
// has the same length (mismatched lengths produce an inconsistency error)
// and returns the first shard's array. The per-field entries are not
// merged across shards: values from the other shards are dropped.
func mergeFieldStatistics(replies []reply.Reply) (reply.Reply, error) {
	var first reply.Reply
	var have bool
	for _, r := range replies {
		v, ok := r.MapGet("field_statistics")
		if !ok {
			continue
		}
		if !have {
			first = v
			have = true
			continue
		}
		if v.Len() != first.Len() {
			return reply.Nil(), errInconsistentFieldStatistics
		}
	}
	if !have {
		return reply.Nil(), nil
	}
	return first, nil
}

var errInconsistentFieldStatistics = errors.New("ERR field_statistics: inconsistent array length across shards")
