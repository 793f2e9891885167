package docstore

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// The helpers below evaluate queries in process. MemoryClient and BoltClient
// share them so both behave like the Mongo backend for the operators in Op.

// normalize round-trips v through BSON so every backend compares the same
// value types (int32/int64, primitive.DateTime, primitive.A).
func normalize(v any) (bson.M, error) {
	data, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m bson.M
	if err := bson.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	if m == nil {
		m = bson.M{}
	}
	return m, nil
}

// withSchema prepends the schema-tag condition for searches.
func withSchema(entity Entity, where Where) Where {
	if entity.Schema == "" {
		return where
	}
	out := make(Where, 0, len(where)+1)
	out = append(out, Eq(FieldSchema, entity.Schema))
	return append(out, where...)
}

func matches(doc bson.M, where Where) bool {
	for _, c := range where {
		v, present := doc[c.Field]
		switch c.Op {
		case OpEq:
			if !present {
				if c.Value != nil {
					return false
				}
				continue
			}
			if cmp, ok := compareValues(v, c.Value); !ok || cmp != 0 {
				return false
			}
		case OpNe:
			if !present {
				if c.Value == nil {
					return false
				}
				continue
			}
			if cmp, ok := compareValues(v, c.Value); ok && cmp == 0 {
				return false
			}
		case OpGte:
			cmp, ok := compareValues(v, c.Value)
			if !present || !ok || cmp < 0 {
				return false
			}
		case OpLte:
			cmp, ok := compareValues(v, c.Value)
			if !present || !ok || cmp > 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

type valueKind int

const (
	kindOther valueKind = iota
	kindNumber
	kindString
	kindTime
	kindBool
)

func classify(v any) (valueKind, float64, string, time.Time, bool) {
	switch x := v.(type) {
	case int:
		return kindNumber, float64(x), "", time.Time{}, false
	case int32:
		return kindNumber, float64(x), "", time.Time{}, false
	case int64:
		return kindNumber, float64(x), "", time.Time{}, false
	case float32:
		return kindNumber, float64(x), "", time.Time{}, false
	case float64:
		return kindNumber, x, "", time.Time{}, false
	case string:
		return kindString, 0, x, time.Time{}, false
	case primitive.ObjectID:
		return kindString, 0, x.Hex(), time.Time{}, false
	case time.Time:
		return kindTime, 0, "", x, false
	case primitive.DateTime:
		return kindTime, 0, "", x.Time(), false
	case bool:
		return kindBool, 0, "", time.Time{}, x
	}
	return kindOther, 0, "", time.Time{}, false
}

// compareValues orders two scalar values. ok is false when the values are of
// incomparable kinds.
func compareValues(a, b any) (int, bool) {
	ka, na, sa, ta, ba := classify(a)
	kb, nb, sb, tb, bb := classify(b)
	if ka != kb || ka == kindOther {
		return 0, false
	}
	switch ka {
	case kindNumber:
		switch {
		case na < nb:
			return -1, true
		case na > nb:
			return 1, true
		}
		return 0, true
	case kindString:
		return strings.Compare(sa, sb), true
	case kindTime:
		return ta.Compare(tb), true
	case kindBool:
		switch {
		case ba == bb:
			return 0, true
		case !ba:
			return -1, true
		}
		return 1, true
	}
	return 0, false
}

// sortDocs orders docs in place. Missing or incomparable values sort first,
// the way Mongo places nulls ahead of values in ascending order.
func sortDocs(docs []bson.M, s *Sort) {
	if s == nil || s.Field == "" {
		return
	}
	sort.SliceStable(docs, func(i, j int) bool {
		vi, iok := docs[i][s.Field]
		vj, jok := docs[j][s.Field]
		var less bool
		switch {
		case !iok && !jok:
			return false
		case !iok:
			less = true
		case !jok:
			less = false
		default:
			cmp, ok := compareValues(vi, vj)
			if !ok || cmp == 0 {
				return false
			}
			less = cmp < 0
		}
		if s.Desc {
			return !less
		}
		return less
	})
}

func project(doc bson.M, fields []string) bson.M {
	if len(fields) == 0 {
		return doc
	}
	out := bson.M{FieldID: doc[FieldID]}
	for _, f := range fields {
		if v, ok := doc[f]; ok {
			out[f] = v
		}
	}
	return out
}

func paginate(docs []bson.M, page, pageSize int) []bson.M {
	start := (page - 1) * pageSize
	if start >= len(docs) {
		return nil
	}
	end := start + pageSize
	if end > len(docs) {
		end = len(docs)
	}
	return docs[start:end]
}

// runQuery filters, sorts, paginates and projects candidates, which must be
// in the backend's natural order.
func runQuery(entity Entity, candidates []bson.M, q Query) ([]bson.Raw, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	where := withSchema(entity, q.Where)
	matched := make([]bson.M, 0, len(candidates))
	for _, doc := range candidates {
		if matches(doc, where) {
			matched = append(matched, doc)
		}
	}
	sortDocs(matched, q.Sort)

	page := paginate(matched, q.Page, q.PageSize)
	out := make([]bson.Raw, 0, len(page))
	for _, doc := range page {
		raw, err := bson.Marshal(project(doc, q.Fields))
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", entity.Name, err)
		}
		out = append(out, raw)
	}
	return out, nil
}

// violatesUnique reports whether candidate collides with another document on
// a unique index. Documents missing any key never collide.
func violatesUnique(indexes []Index, existing []bson.M, candidate bson.M) bool {
	for _, idx := range indexes {
		if !idx.Unique || len(idx.Keys) == 0 {
			continue
		}
		for _, doc := range existing {
			if doc[FieldID] == candidate[FieldID] {
				continue
			}
			if sameKeys(idx.Keys, doc, candidate) {
				return true
			}
		}
	}
	return false
}

func sameKeys(keys []string, a, b bson.M) bool {
	for _, k := range keys {
		va, aok := a[k]
		vb, bok := b[k]
		if !aok || !bok {
			return false
		}
		if cmp, ok := compareValues(va, vb); !ok || cmp != 0 {
			return false
		}
	}
	return true
}

func newID() string {
	return primitive.NewObjectID().Hex()
}
