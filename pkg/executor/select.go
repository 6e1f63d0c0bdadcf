package executor

import (
	"sort"
	"strings"

	"github.com/minisql/minisql/pkg/catalog"
	"github.com/minisql/minisql/pkg/dberr"
	"github.com/minisql/minisql/pkg/eval"
	"github.com/minisql/minisql/pkg/parser"
	"github.com/minisql/minisql/pkg/value"
)

// relSide describes one relation participating in a SELECT: its binding
// name (alias or table name), its table, and its declared column order.
type relSide struct {
	name    string
	table   *catalog.Table
	columns []string
}

// frame is one candidate row (or row pair, for a join) before WHERE.
type frame struct {
	left     catalog.Row
	leftOK   bool
	right    catalog.Row
	rightOK  bool
}

// boundFrame pairs a frame with the eval.Binding built from it, computed
// once and reused across WHERE/GROUP BY/HAVING/projection/ORDER BY.
type boundFrame struct {
	f frame
	b *eval.Binding
}

// executeSelect implements spec §4.5/§9's fixed pipeline: FROM → join →
// WHERE → GROUP BY → aggregate → HAVING → projection → DISTINCT →
// ORDER BY → LIMIT/OFFSET.
func (e *Executor) executeSelect(s *parser.SelectStatement) (*Result, error) {
	db, err := e.currentDatabase()
	if err != nil {
		return nil, err
	}

	fromTable, ok := db.Table(s.From.Name)
	if !ok {
		return nil, dberr.NotFound("table %q does not exist", s.From.Name)
	}
	left := relSide{name: strings.ToLower(s.From.EffectiveName()), table: fromTable, columns: fromTable.ColumnNames()}

	var right *relSide
	if s.Join != nil {
		joinTable, ok := db.Table(s.Join.Table.Name)
		if !ok {
			return nil, dberr.NotFound("table %q does not exist", s.Join.Table.Name)
		}
		right = &relSide{name: strings.ToLower(s.Join.Table.EffectiveName()), table: joinTable, columns: joinTable.ColumnNames()}
	}

	frames, err := buildFrames(s, left, right)
	if err != nil {
		return nil, err
	}

	aggCalls := collectAggregateCalls(s)
	isGrouped := len(s.GroupBy) > 0 || len(aggCalls) > 0
	if isGrouped && right != nil {
		return nil, dberr.Feature("aggregate queries combined with JOIN are not supported")
	}

	var filtered []boundFrame
	for _, f := range frames {
		b := buildBinding(f, left, right)
		if s.Where != nil {
			v, err := eval.Eval(s.Where, &eval.Context{Binding: b})
			if err != nil {
				return nil, err
			}
			if !v.Truthy() {
				continue
			}
		}
		filtered = append(filtered, boundFrame{f: f, b: b})
	}

	var outColumns []string
	var outRows []Row
	var sortValues [][]value.Value

	if isGrouped {
		outColumns, outRows, sortValues, err = e.executeGrouped(s, filtered, left, right)
	} else {
		outColumns, outRows, sortValues, err = e.executeUngrouped(s, filtered, left, right)
	}
	if err != nil {
		return nil, err
	}

	if s.Distinct {
		outRows, sortValues = dedupeRows(outColumns, outRows, sortValues)
	}

	if len(s.OrderBy) > 0 {
		applyOrderBy(s.OrderBy, outRows, sortValues)
	}

	outRows = applyLimitOffset(s.Limit, outRows)
	return rowsResult(outColumns, outRows), nil
}

func collectAggregateCalls(s *parser.SelectStatement) []*parser.FunctionCall {
	seen := make(map[string]bool)
	var out []*parser.FunctionCall
	add := func(calls []*parser.FunctionCall) {
		for _, fc := range calls {
			key := eval.AggregateKey(fc)
			if !seen[key] {
				seen[key] = true
				out = append(out, fc)
			}
		}
	}
	for _, col := range s.Columns {
		add(eval.CollectAggregates(col))
	}
	add(eval.CollectAggregates(s.Having))
	for _, ob := range s.OrderBy {
		add(eval.CollectAggregates(ob.Expression))
	}
	return out
}

// buildFrames implements the join family of spec §4.5: INNER emits
// matching pairs only; LEFT/RIGHT null-fill the unmatched side; FULL is
// the union of both, each unmatched row appearing exactly once. No join
// clause means one frame per base row.
func buildFrames(s *parser.SelectStatement, left relSide, right *relSide) ([]frame, error) {
	leftRows := left.table.Scan()
	if right == nil {
		frames := make([]frame, len(leftRows))
		for i, r := range leftRows {
			frames[i] = frame{left: r, leftOK: true}
		}
		return frames, nil
	}

	leftCol, rightCol, err := resolveJoinSides(s.Join, left.name, right.name)
	if err != nil {
		return nil, err
	}
	leftColObj, ok := left.table.Column(leftCol)
	if !ok {
		return nil, dberr.NotFound("column %q does not exist on table %q", leftCol, left.table.Name)
	}
	rightColObj, ok := right.table.Column(rightCol)
	if !ok {
		return nil, dberr.NotFound("column %q does not exist on table %q", rightCol, right.table.Name)
	}
	lKey := strings.ToLower(leftColObj.Name)
	rKey := strings.ToLower(rightColObj.Name)

	rightRows := right.table.Scan()
	rightMatched := make([]bool, len(rightRows))

	var frames []frame
	joinType := s.Join.JoinType

	for _, l := range leftRows {
		matched := false
		for ri, r := range rightRows {
			if value.Equal(l[lKey], r[rKey]) {
				frames = append(frames, frame{left: l, leftOK: true, right: r, rightOK: true})
				matched = true
				rightMatched[ri] = true
			}
		}
		if !matched && (joinType == "LEFT" || joinType == "FULL") {
			frames = append(frames, frame{left: l, leftOK: true})
		}
	}

	if joinType == "RIGHT" || joinType == "FULL" {
		for ri, r := range rightRows {
			if !rightMatched[ri] {
				frames = append(frames, frame{right: r, rightOK: true})
			}
		}
	}

	return frames, nil
}

// resolveJoinSides maps the ON clause's two (possibly qualified) operands
// onto (fromSideColumn, joinSideColumn) regardless of which order they
// were written in.
func resolveJoinSides(join *parser.JoinClause, fromName, joinName string) (fromCol, joinCol string, err error) {
	lt, rt := strings.ToLower(join.LeftTable), strings.ToLower(join.RightTable)
	switch {
	case lt == fromName && rt == joinName:
		return join.LeftCol, join.RightCol, nil
	case lt == joinName && rt == fromName:
		return join.RightCol, join.LeftCol, nil
	case lt == "" && rt == joinName:
		return join.LeftCol, join.RightCol, nil
	case lt == fromName && rt == "":
		return join.LeftCol, join.RightCol, nil
	case lt == "" && rt == fromName:
		return join.RightCol, join.LeftCol, nil
	case lt == joinName && rt == "":
		return join.RightCol, join.LeftCol, nil
	default:
		return "", "", dberr.Semantic("JOIN ON clause must relate %q and %q", fromName, joinName)
	}
}

func nullRow(columns []string) catalog.Row {
	row := make(catalog.Row, len(columns))
	for _, c := range columns {
		row[strings.ToLower(c)] = value.Null()
	}
	return row
}

func buildBinding(f frame, left relSide, right *relSide) *eval.Binding {
	b := eval.NewBinding()
	if f.leftOK {
		b.AddRow(left.name, f.left, left.columns)
	} else {
		b.AddRow(left.name, nullRow(left.columns), left.columns)
	}
	if right != nil {
		if f.rightOK {
			b.AddRow(right.name, f.right, right.columns)
		} else {
			b.AddRow(right.name, nullRow(right.columns), right.columns)
		}
	}
	return b
}

// executeUngrouped implements the non-aggregate SELECT pipeline: project
// every filtered frame directly, collecting each row's ORDER BY sort key
// values alongside.
func (e *Executor) executeUngrouped(s *parser.SelectStatement, filtered []boundFrame, left relSide, right *relSide) ([]string, []Row, [][]value.Value, error) {
	var columns []string
	var rows []Row
	var sortVals [][]value.Value

	for _, bf := range filtered {
		cols, row, err := projectRow(s.Columns, bf.b, nil, left, right)
		if err != nil {
			return nil, nil, nil, err
		}
		if columns == nil {
			columns = cols
		}
		rows = append(rows, row)

		sv, err := orderKeys(s.OrderBy, bf.b, nil, row)
		if err != nil {
			return nil, nil, nil, err
		}
		sortVals = append(sortVals, sv)
	}
	if columns == nil {
		cols, err := projectionColumnNames(s.Columns, left, right)
		if err != nil {
			return nil, nil, nil, err
		}
		columns = cols
	}
	return columns, rows, sortVals, nil
}

// groupByKey renders a canonical key for a GROUP BY tuple. Kind-tagging
// each component keeps distinct kinds from colliding on their string
// forms; Null always canonicalizes to the same component, giving GROUP
// BY's "Null groups with Null" semantics for free.
func groupByKey(vals []value.Value) string {
	var sb strings.Builder
	for _, v := range vals {
		sb.WriteString(v.Kind.String())
		sb.WriteByte(':')
		sb.WriteString(v.String())
		sb.WriteByte('\x1f')
	}
	return sb.String()
}

type group struct {
	keyVals []value.Value
	members []boundFrame
}

// executeGrouped implements spec §4.5's aggregate pipeline: partition
// into groups, enforce the non-grouped-column rule, compute aggregates,
// apply HAVING, then project.
func (e *Executor) executeGrouped(s *parser.SelectStatement, filtered []boundFrame, left relSide, right *relSide) ([]string, []Row, [][]value.Value, error) {
	groupAllowed := make(map[string]bool, len(s.GroupBy))
	for _, g := range s.GroupBy {
		if cr, ok := g.(*parser.ColumnReference); ok {
			groupAllowed[strings.ToLower(cr.Table)+"."+strings.ToLower(cr.Column)] = true
			if cr.Table == "" {
				groupAllowed[strings.ToLower(cr.Column)] = true
			}
		}
	}
	for _, col := range s.Columns {
		expr := col
		if ae, ok := col.(*parser.AliasedExpression); ok {
			expr = ae.Expression
		}
		if fc, ok := expr.(*parser.FunctionCall); ok && eval.IsAggregateName(fc.Name) {
			continue
		}
		if eval.ContainsColumnNotIn(expr, groupAllowed) {
			return nil, nil, nil, dberr.Semantic("column %q must appear in GROUP BY or be used in an aggregate function", expr.String())
		}
	}

	var groups []*group
	index := make(map[string]int)
	for _, bf := range filtered {
		keyVals := make([]value.Value, len(s.GroupBy))
		for i, g := range s.GroupBy {
			v, err := eval.Eval(g, &eval.Context{Binding: bf.b})
			if err != nil {
				return nil, nil, nil, err
			}
			keyVals[i] = v
		}
		key := groupByKey(keyVals)
		if gi, ok := index[key]; ok {
			groups[gi].members = append(groups[gi].members, bf)
		} else {
			index[key] = len(groups)
			groups = append(groups, &group{keyVals: keyVals, members: []boundFrame{bf}})
		}
	}
	if len(groups) == 0 && len(s.GroupBy) == 0 {
		groups = append(groups, &group{})
	}

	aggCalls := collectAggregateCalls(s)

	var columns []string
	var rows []Row
	var sortVals [][]value.Value

	for _, g := range groups {
		members := make([]*eval.Binding, len(g.members))
		for i, m := range g.members {
			members[i] = m.b
		}
		aggs, err := eval.ComputeAggregates(members, aggCalls)
		if err != nil {
			return nil, nil, nil, err
		}

		repBinding := eval.NewBinding()
		if len(g.members) > 0 {
			repBinding = g.members[0].b
		}
		ctx := &eval.Context{Binding: repBinding, Aggregates: aggs}

		if s.Having != nil {
			v, err := eval.Eval(s.Having, ctx)
			if err != nil {
				return nil, nil, nil, err
			}
			if !v.Truthy() {
				continue
			}
		}

		cols, row, err := projectRow(s.Columns, repBinding, aggs, left, right)
		if err != nil {
			return nil, nil, nil, err
		}
		if columns == nil {
			columns = cols
		}
		rows = append(rows, row)

		sv, err := orderKeys(s.OrderBy, repBinding, aggs, row)
		if err != nil {
			return nil, nil, nil, err
		}
		sortVals = append(sortVals, sv)
	}
	if columns == nil {
		cols, err := projectionColumnNames(s.Columns, left, right)
		if err != nil {
			return nil, nil, nil, err
		}
		columns = cols
	}
	return columns, rows, sortVals, nil
}

// starColumns resolves a StarExpression's qualifier (empty for a bare
// `*`, a relation name for `t.*`) to the ordered (relation, column) pairs
// it expands to, per spec §4.5 step 2: "If projection is *, produce all
// columns in declared order".
func starColumns(table string, left relSide, right *relSide) ([]relColumn, error) {
	if table != "" {
		t := strings.ToLower(table)
		if t == left.name {
			return relColumns(left), nil
		}
		if right != nil && t == right.name {
			return relColumns(*right), nil
		}
		return nil, dberr.NotFound("relation %q not found", table)
	}
	out := relColumns(left)
	if right != nil {
		out = append(out, relColumns(*right)...)
	}
	return out, nil
}

type relColumn struct {
	rel string
	col string
}

func relColumns(rs relSide) []relColumn {
	out := make([]relColumn, len(rs.columns))
	for i, c := range rs.columns {
		out[i] = relColumn{rel: rs.name, col: c}
	}
	return out
}

// projectRow evaluates one SELECT list against binding b (plus aggs, if
// this is a grouped query), expanding any StarExpression into its
// relation's full declared column set.
func projectRow(columns []parser.Expression, b *eval.Binding, aggs map[string]value.Value, left relSide, right *relSide) ([]string, Row, error) {
	ctx := &eval.Context{Binding: b, Aggregates: aggs}
	var names []string
	row := make(Row)
	for _, col := range columns {
		expr := col
		alias := ""
		if ae, ok := col.(*parser.AliasedExpression); ok {
			expr = ae.Expression
			alias = ae.Alias
		}
		if se, ok := expr.(*parser.StarExpression); ok {
			pairs, err := starColumns(se.Table, left, right)
			if err != nil {
				return nil, nil, err
			}
			for _, p := range pairs {
				v, err := b.Resolve(p.rel, p.col)
				if err != nil {
					return nil, nil, err
				}
				names = append(names, p.col)
				row[p.col] = v
			}
			continue
		}
		name := alias
		if name == "" {
			name = outputName(expr)
		}
		v, err := eval.Eval(expr, ctx)
		if err != nil {
			return nil, nil, err
		}
		names = append(names, name)
		row[name] = v
	}
	return names, row, nil
}

func outputName(expr parser.Expression) string {
	switch e := expr.(type) {
	case *parser.ColumnReference:
		return e.Column
	case *parser.FunctionCall:
		return eval.AggregateKey(e)
	default:
		return expr.String()
	}
}

func projectionColumnNames(columns []parser.Expression, left relSide, right *relSide) ([]string, error) {
	var names []string
	for _, col := range columns {
		if ae, ok := col.(*parser.AliasedExpression); ok {
			names = append(names, ae.Alias)
			continue
		}
		if se, ok := col.(*parser.StarExpression); ok {
			pairs, err := starColumns(se.Table, left, right)
			if err != nil {
				return nil, err
			}
			for _, p := range pairs {
				names = append(names, p.col)
			}
			continue
		}
		names = append(names, outputName(col))
	}
	return names, nil
}

// orderKeys evaluates each ORDER BY expression, preferring the projected
// output row for bare-alias references (per spec §4.5: "ORDER BY may
// reference projection aliases") and falling back to the row's own
// binding/aggregates otherwise.
func orderKeys(orderBy []*parser.OrderByClause, b *eval.Binding, aggs map[string]value.Value, out Row) ([]value.Value, error) {
	if len(orderBy) == 0 {
		return nil, nil
	}
	vals := make([]value.Value, len(orderBy))
	for i, ob := range orderBy {
		if cr, ok := ob.Expression.(*parser.ColumnReference); ok && cr.Table == "" {
			if v, ok := out[cr.Column]; ok {
				vals[i] = v
				continue
			}
		}
		v, err := eval.Eval(ob.Expression, &eval.Context{Binding: b, Aggregates: aggs})
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}

// dedupeRows implements DISTINCT: ordered tuple equality over the
// projected output columns, with Null equal to Null per spec §4.5.
func dedupeRows(columns []string, rows []Row, sortVals [][]value.Value) ([]Row, [][]value.Value) {
	seen := make(map[string]bool, len(rows))
	var out []Row
	var outSort [][]value.Value
	for i, r := range rows {
		vals := make([]value.Value, len(columns))
		for j, c := range columns {
			vals[j] = r[c]
		}
		key := groupByKey(vals)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
		if sortVals != nil {
			outSort = append(outSort, sortVals[i])
		}
	}
	return out, outSort
}

// applyOrderBy stable-sorts rows (and their parallel sortVals) per spec
// §4.5: ASC default, Nulls sort last in ASC and first in DESC.
func applyOrderBy(orderBy []*parser.OrderByClause, rows []Row, sortVals [][]value.Value) {
	perm := make([]int, len(rows))
	for i := range perm {
		perm[i] = i
	}
	sort.SliceStable(perm, func(i, j int) bool {
		for k, ob := range orderBy {
			a, b := sortVals[perm[i]][k], sortVals[perm[j]][k]
			cmp, ok := compareForOrder(a, b, ob.Descending)
			if !ok || cmp == 0 {
				continue
			}
			return cmp < 0
		}
		return false
	})
	sortedRows := make([]Row, len(rows))
	sortedVals := make([][]value.Value, len(rows))
	for i, p := range perm {
		sortedRows[i], sortedVals[i] = rows[p], sortVals[p]
	}
	copy(rows, sortedRows)
	copy(sortVals, sortedVals)
}

// compareForOrder orders a against b for one ORDER BY key, applying
// Null-last-ASC/Null-first-DESC collation before falling back to
// value.Compare for non-Null pairs.
func compareForOrder(a, b value.Value, desc bool) (int, bool) {
	aNull, bNull := a.IsNull(), b.IsNull()
	switch {
	case aNull && bNull:
		return 0, true
	case aNull:
		if desc {
			return -1, true
		}
		return 1, true
	case bNull:
		if desc {
			return 1, true
		}
		return -1, true
	}
	cmp, ok := value.Compare(a, b)
	if !ok {
		return 0, false
	}
	if desc {
		cmp = -cmp
	}
	return cmp, true
}

// applyLimitOffset applies OFFSET then LIMIT, per spec §4.5's step 5.
func applyLimitOffset(limit *parser.LimitClause, rows []Row) []Row {
	if limit == nil {
		return rows
	}
	offset := limit.Offset
	if offset > len(rows) {
		offset = len(rows)
	}
	rows = rows[offset:]
	if limit.Count < len(rows) {
		rows = rows[:limit.Count]
	}
	return rows
}
