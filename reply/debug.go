package reply

import jsoniter "github.com/json-iterator/go"

// debugNode is a JSON-friendly projection of one Reply node: never the
// wire format (RESP2/RESP3 only, spec.md SS6) -- just a shape a trace log
// or a test failure message can dump and a human (or a diff tool) can
// read directly.
type debugNode struct {
	Type  string      `json:"type"`
	Val   any         `json:"val,omitempty"`
	Elems []debugNode `json:"elems,omitempty"`
}

func toDebugNode(r Reply) debugNode {
	switch r.typ {
	case TNil:
		return debugNode{Type: "nil"}
	case TInteger:
		return debugNode{Type: "integer", Val: r.i}
	case TDouble:
		return debugNode{Type: "double", Val: r.d}
	case TBool:
		return debugNode{Type: "bool", Val: r.b}
	case TString:
		return debugNode{Type: "string", Val: r.Str()}
	case TStatus:
		return debugNode{Type: "status", Val: r.Str()}
	case TError:
		return debugNode{Type: "error", Val: r.Str()}
	default: // TArray, TMap, TSet
		elems := make([]debugNode, len(r.elems))
		for i, e := range r.elems {
			elems[i] = toDebugNode(e)
		}
		return debugNode{Type: r.typ.String(), Elems: elems}
	}
}

// DebugJSON renders r as an indented JSON projection for tests, trace
// hooks, and failure messages -- never the wire format. Uses
// json-iterator/go rather than encoding/json since every other JSON
// surface in the pack (e.g. the teacher's own config/stats dumps) reaches
// for jsoniter's drop-in, faster Marshal/Unmarshal instead of the
// standard library's.
func DebugJSON(r Reply) ([]byte, error) {
	return jsoniter.MarshalIndent(toDebugNode(r), "", "  ")
}
