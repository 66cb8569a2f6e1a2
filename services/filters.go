package services

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"vkconnect/db"
	"vkconnect/models"

	"gorm.io/gorm"
)

const (
	MaxSearchLength = 80
	MaxSearchTokens = 8
)

var ErrSearchQueryTooLong = errors.New("search query too long")

// CategoryGroups is the static parent slug -> topic slugs mapping consulted on
// the hot path. The categories table is only hit for legacy parents that are
// not in this map.
var CategoryGroups = map[string][]string{
	"visa":      {"e-visa", "visa-extension", "work-permit", "residence-card"},
	"life":      {"housing", "transport", "food", "shopping", "healthcare"},
	"work":      {"job-search", "labor-law", "business", "factory-work"},
	"study":     {"korean-language", "vietnamese-language", "university", "topik"},
	"finance":   {"banking", "remittance", "tax", "insurance"},
	"community": {"events", "travel", "k-culture", "marriage"},
}

// categoryGroupParents is the reverse index: topic slug -> parent slug
var categoryGroupParents = func() map[string]string {
	parents := make(map[string]string)
	for parent, children := range CategoryGroups {
		for _, child := range children {
			parents[child] = parent
		}
	}
	return parents
}()

func IsGroupParent(slug string) bool {
	_, ok := CategoryGroups[slug]
	return ok
}

func IsGroupChild(slug string) bool {
	_, ok := categoryGroupParents[slug]
	return ok
}

// condition is one boolean predicate over the posts table (alias "p"),
// conjoined with AND by applyConditions. OR-groups live inside a single
// condition's SQL.
type condition struct {
	query string
	args  []interface{}
}

func applyConditions(tx *gorm.DB, conds []condition) *gorm.DB {
	for _, cond := range conds {
		tx = tx.Where(cond.query, cond.args...)
	}
	return tx
}

var searchTokenSplitter = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// TokenizeSearch lowercases the query, collapses non letter/number runs,
// dedupes tokens and caps the list at MaxSearchTokens. A punctuation-only
// query yields an empty list.
func TokenizeSearch(query string) []string {
	lowered := strings.ToLower(strings.TrimSpace(query))
	if lowered == "" {
		return nil
	}

	seen := make(map[string]bool)
	var tokens []string
	for _, token := range searchTokenSplitter.Split(lowered, -1) {
		if token == "" || seen[token] {
			continue
		}
		seen[token] = true
		tokens = append(tokens, token)
		if len(tokens) == MaxSearchTokens {
			break
		}
	}
	return tokens
}

// categoryConditions resolves the category / parentCategory parameters into
// predicates. category wins when both are present.
func categoryConditions(ctx context.Context, parentCategory, category string) ([]condition, error) {
	if category != "" && category != "all" {
		return []condition{groupAwareCondition(category)}, nil
	}

	if parentCategory != "" && parentCategory != "all" {
		if IsGroupParent(parentCategory) || IsGroupChild(parentCategory) {
			return []condition{groupAwareCondition(parentCategory)}, nil
		}
		// Legacy parent: resolve real children from the categories table
		legacy, err := legacyParentCondition(ctx, parentCategory)
		if err != nil {
			return nil, err
		}
		return []condition{legacy}, nil
	}

	return nil, nil
}

// groupAwareCondition matches a slug against the static group map: a parent
// matches itself, its children stored as top-level categories, and its
// children stored as subcategories; a child matches both its subcategory form
// and legacy posts that carry it as the top-level category.
func groupAwareCondition(slug string) condition {
	if children, ok := CategoryGroups[slug]; ok {
		all := append([]string{slug}, children...)
		return condition{
			query: "(p.category IN ? OR p.subcategory IN ?)",
			args:  []interface{}{all, children},
		}
	}
	if IsGroupChild(slug) {
		return condition{
			query: "(p.subcategory = ? OR p.category = ?)",
			args:  []interface{}{slug, slug},
		}
	}
	return condition{query: "p.category = ?", args: []interface{}{slug}}
}

func legacyParentCondition(ctx context.Context, slug string) (condition, error) {
	var parent models.Category
	err := db.GetReadOnlyDB(ctx).Where("slug = ?", slug).First(&parent).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return condition{query: "p.category = ?", args: []interface{}{slug}}, nil
		}
		return condition{}, err
	}

	var childSlugs []string
	err = db.GetReadOnlyDB(ctx).Model(&models.Category{}).
		Where("parent_id = ?", parent.ID).
		Pluck("slug", &childSlugs).Error
	if err != nil {
		return condition{}, err
	}
	if len(childSlugs) == 0 {
		return condition{query: "p.category = ?", args: []interface{}{slug}}, nil
	}
	return condition{query: "p.category IN ?", args: []interface{}{childSlugs}}, nil
}

// searchConditions builds the AND-of-ORs free text predicates: every token
// must appear in title or content. With no usable tokens the raw string is
// matched as a single substring.
func searchConditions(search string, tokens []string) []condition {
	if len(tokens) == 0 {
		pattern := "%" + strings.ToLower(search) + "%"
		return []condition{{
			query: "(LOWER(p.title) LIKE ? OR LOWER(p.content) LIKE ?)",
			args:  []interface{}{pattern, pattern},
		}}
	}

	conds := make([]condition, 0, len(tokens))
	for _, token := range tokens {
		pattern := "%" + token + "%"
		conds = append(conds, condition{
			query: "(LOWER(p.title) LIKE ? OR LOWER(p.content) LIKE ?)",
			args:  []interface{}{pattern, pattern},
		})
	}
	return conds
}

// matchScoreExpression builds the token-overlap relevance expression used to
// order search results, as a select fragment with its bind args.
func matchScoreExpression(tokens []string) (string, []interface{}) {
	if len(tokens) == 0 {
		return "0", nil
	}
	parts := make([]string, 0, len(tokens))
	args := make([]interface{}, 0, len(tokens)*2)
	for _, token := range tokens {
		pattern := "%" + token + "%"
		parts = append(parts, "CASE WHEN LOWER(p.title) LIKE ? OR LOWER(p.content) LIKE ? THEN 1 ELSE 0 END")
		args = append(args, pattern, pattern)
	}
	return "(" + strings.Join(parts, " + ") + ")", args
}
