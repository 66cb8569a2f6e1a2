package services

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenizeSearch(t *testing.T) {
	tokens := TokenizeSearch("  Visa EXTENSION visa  ")
	require.Equal(t, []string{"visa", "extension"}, tokens)
}

func TestTokenizeSearchUnicode(t *testing.T) {
	tokens := TokenizeSearch("Gia hạn visa, 비자 연장!")
	require.Equal(t, []string{"gia", "hạn", "visa", "비자", "연장"}, tokens)
}

func TestTokenizeSearchPunctuationOnly(t *testing.T) {
	require.Empty(t, TokenizeSearch("?!... ---"))
	require.Empty(t, TokenizeSearch(""))
}

func TestTokenizeSearchCapsTokenCount(t *testing.T) {
	tokens := TokenizeSearch("a b c d e f g h i j k")
	require.Len(t, tokens, MaxSearchTokens)
	require.Equal(t, "h", tokens[len(tokens)-1])
}

func TestGroupLookups(t *testing.T) {
	require.True(t, IsGroupParent("visa"))
	require.False(t, IsGroupParent("e-visa"))
	require.True(t, IsGroupChild("e-visa"))
	require.False(t, IsGroupChild("visa"))
	require.False(t, IsGroupParent("nonexistent"))
}

func TestGroupAwareConditionParent(t *testing.T) {
	cond := groupAwareCondition("visa")
	require.Equal(t, "(p.category IN ? OR p.subcategory IN ?)", cond.query)
	require.Len(t, cond.args, 2)
	all := cond.args[0].([]string)
	require.Contains(t, all, "visa")
	require.Contains(t, all, "e-visa")
	children := cond.args[1].([]string)
	require.NotContains(t, children, "visa")
	require.Contains(t, children, "work-permit")
}

func TestGroupAwareConditionChild(t *testing.T) {
	cond := groupAwareCondition("banking")
	require.Equal(t, "(p.subcategory = ? OR p.category = ?)", cond.query)
	require.Equal(t, []interface{}{"banking", "banking"}, cond.args)
}

func TestGroupAwareConditionUnknownSlug(t *testing.T) {
	cond := groupAwareCondition("random-slug")
	require.Equal(t, "p.category = ?", cond.query)
	require.Equal(t, []interface{}{"random-slug"}, cond.args)
}

func TestSearchConditionsTokens(t *testing.T) {
	conds := searchConditions("visa extension", []string{"visa", "extension"})
	require.Len(t, conds, 2)
	require.Equal(t, []interface{}{"%visa%", "%visa%"}, conds[0].args)
	require.Equal(t, []interface{}{"%extension%", "%extension%"}, conds[1].args)
}

func TestSearchConditionsNoTokensFallsBackToRawString(t *testing.T) {
	conds := searchConditions("C++", nil)
	require.Len(t, conds, 1)
	require.Equal(t, []interface{}{"%c++%", "%c++%"}, conds[0].args)
}

func TestMatchScoreExpression(t *testing.T) {
	expr, args := matchScoreExpression([]string{"visa", "work"})
	require.Contains(t, expr, "CASE WHEN")
	require.Equal(t, []interface{}{"%visa%", "%visa%", "%work%", "%work%"}, args)

	expr, args = matchScoreExpression(nil)
	require.Equal(t, "0", expr)
	require.Nil(t, args)
}
