package store

import (
	"sort"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// Activity kinds.
const (
	KindCreate     = "create"
	KindComplete   = "complete"
	KindUncomplete = "uncomplete"
	KindImport     = "import"
	KindRepair     = "repair"
)

// Activity is one entry in a user's append-only change log. Sequence is
// assigned by the store on append and increases monotonically within a
// user's log.
type Activity struct {
	Sequence int64     `json:"sequence"`
	User     string    `json:"user"`
	Kind     string    `json:"kind"`
	Date     string    `json:"date,omitempty"`
	Problem  int       `json:"problem,omitempty"`
	Link     string    `json:"link,omitempty"`
	Detail   string    `json:"detail,omitempty"`
	At       time.Time `json:"at"`
}

// QueryOpts configures activity queries with filtering and pagination.
// Results are always newest first.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before (0 = no bound)
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

func (o QueryOpts) match(a Activity) bool {
	if a.Sequence <= o.After {
		return false
	}
	if o.Before > 0 && a.Sequence >= o.Before {
		return false
	}
	if !o.From.IsZero() && a.At.Before(o.From) {
		return false
	}
	if !o.To.IsZero() && a.At.After(o.To) {
		return false
	}
	return true
}

// filterActivity applies opts to entries of one user, in any order.
func filterActivity(entries []Activity, opts QueryOpts) []Activity {
	out := make([]Activity, 0, len(entries))
	for _, a := range entries {
		if opts.match(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence > out[j].Sequence })
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out
}

// activityTime is the fixed-width UTC layout used by text columns so that
// string order matches time order.
const activityTime = "2006-01-02T15:04:05.000000000Z"

func formatActivityTime(t time.Time) string {
	return t.UTC().Format(activityTime)
}

const activityTable = "activity"

var activityColumns = []string{"seq", "user_id", "kind", "date", "problem", "link", "detail", "occurred_at"}

// activityQuery builds the select for ListActivity in the given SQL
// dialect. ts converts time bounds into the column's representation.
func activityQuery(d, user string, opts QueryOpts, ts func(time.Time) any) (string, []any) {
	b := entsql.Dialect(d)
	preds := []*entsql.Predicate{entsql.EQ("user_id", user)}
	if opts.After > 0 {
		preds = append(preds, entsql.GT("seq", opts.After))
	}
	if opts.Before > 0 {
		preds = append(preds, entsql.LT("seq", opts.Before))
	}
	if !opts.From.IsZero() {
		preds = append(preds, entsql.GTE("occurred_at", ts(opts.From)))
	}
	if !opts.To.IsZero() {
		preds = append(preds, entsql.LTE("occurred_at", ts(opts.To)))
	}

	sel := b.Select(activityColumns...).
		From(b.Table(activityTable)).
		Where(entsql.And(preds...)).
		OrderBy(entsql.Desc("seq"))
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}
	return sel.Query()
}
