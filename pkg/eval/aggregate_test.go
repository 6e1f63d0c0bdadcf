package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minisql/minisql/pkg/parser"
	"github.com/minisql/minisql/pkg/value"
)

func bindingWithAmt(amt value.Value) *Binding {
	b := NewBinding()
	b.AddRow("t", map[string]value.Value{"amt": amt}, []string{"amt"})
	return b
}

func TestComputeAggregates_CountStarCountsAllMembers(t *testing.T) {
	members := []*Binding{bindingWithAmt(value.Integer(1)), bindingWithAmt(value.Null())}
	aggs, err := ComputeAggregates(members, []*parser.FunctionCall{{Name: "COUNT", Star: true}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), aggs["COUNT(*)"].I)
}

func TestComputeAggregates_CountColumnIgnoresNull(t *testing.T) {
	members := []*Binding{bindingWithAmt(value.Integer(1)), bindingWithAmt(value.Null())}
	fc := &parser.FunctionCall{Name: "COUNT", Arguments: []parser.Expression{col("t", "amt")}}
	aggs, err := ComputeAggregates(members, []*parser.FunctionCall{fc})
	require.NoError(t, err)
	assert.Equal(t, int64(1), aggs[AggregateKey(fc)].I)
}

func TestComputeAggregates_EmptySetSumIsNull(t *testing.T) {
	fc := &parser.FunctionCall{Name: "SUM", Arguments: []parser.Expression{col("t", "amt")}}
	aggs, err := ComputeAggregates(nil, []*parser.FunctionCall{fc})
	require.NoError(t, err)
	assert.True(t, aggs[AggregateKey(fc)].IsNull(), "SUM over an empty set must be Null per SQL standard")
}

func TestComputeAggregates_EmptySetCountIsZero(t *testing.T) {
	fc := &parser.FunctionCall{Name: "COUNT", Star: true}
	aggs, err := ComputeAggregates(nil, []*parser.FunctionCall{fc})
	require.NoError(t, err)
	assert.Equal(t, int64(0), aggs["COUNT(*)"].I)
}

func TestComputeAggregates_AvgOverMixedIntFloat(t *testing.T) {
	members := []*Binding{bindingWithAmt(value.Integer(1)), bindingWithAmt(value.Float(3.0))}
	fc := &parser.FunctionCall{Name: "AVG", Arguments: []parser.Expression{col("t", "amt")}}
	aggs, err := ComputeAggregates(members, []*parser.FunctionCall{fc})
	require.NoError(t, err)
	assert.Equal(t, 2.0, aggs[AggregateKey(fc)].F)
}

func TestComputeAggregates_SumRejectsNonNumeric(t *testing.T) {
	members := []*Binding{bindingWithAmt(value.Text("nope"))}
	fc := &parser.FunctionCall{Name: "SUM", Arguments: []parser.Expression{col("t", "amt")}}
	_, err := ComputeAggregates(members, []*parser.FunctionCall{fc})
	require.Error(t, err)
}

func TestComputeAggregates_MinMax(t *testing.T) {
	members := []*Binding{
		bindingWithAmt(value.Integer(5)),
		bindingWithAmt(value.Integer(1)),
		bindingWithAmt(value.Integer(3)),
	}
	minFC := &parser.FunctionCall{Name: "MIN", Arguments: []parser.Expression{col("t", "amt")}}
	maxFC := &parser.FunctionCall{Name: "MAX", Arguments: []parser.Expression{col("t", "amt")}}
	aggs, err := ComputeAggregates(members, []*parser.FunctionCall{minFC, maxFC})
	require.NoError(t, err)
	assert.Equal(t, int64(1), aggs[AggregateKey(minFC)].I)
	assert.Equal(t, int64(5), aggs[AggregateKey(maxFC)].I)
}

func TestContainsColumnNotIn_AggregateArgumentsExempt(t *testing.T) {
	fc := &parser.FunctionCall{Name: "SUM", Arguments: []parser.Expression{col("", "amt")}}
	assert.False(t, ContainsColumnNotIn(fc, map[string]bool{}), "aggregate arguments are summarized away, not subject to the GROUP BY rule")
}

func TestContainsColumnNotIn_FlagsNonGroupedColumn(t *testing.T) {
	assert.True(t, ContainsColumnNotIn(col("", "name"), map[string]bool{"id": true}))
	assert.False(t, ContainsColumnNotIn(col("", "id"), map[string]bool{"id": true}))
}
