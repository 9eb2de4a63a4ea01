// Package dto holds the wire shapes of the API and the mapping between them
// and the persisted records. Nothing here performs I/O.
package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	"finreport/pkg/crud"
	"finreport/pkg/nullable"
)

// MaxTextLength bounds every free-text column.
const MaxTextLength = 1000

// ErrValidation is wrapped by every Validate failure.
var ErrValidation = errors.New("validation failed")

// Filter is implemented by the where-inputs of find-many queries.
type Filter interface {
	Conditions() []crud.Condition
}

// FindManyArgs is a find-many request: filter, paging and sort.
// SortBy maps wire field names to "asc" or "desc".
type FindManyArgs[W Filter] struct {
	Where  W
	Skip   *int
	Take   *int
	SortBy map[string]string
}

// Metadata answers the meta endpoints.
type Metadata struct {
	Count int64 `json:"count"`
}

// WhereUniqueInput addresses a single record.
type WhereUniqueInput struct {
	ID string `json:"id" uri:"id" binding:"required"`
}

// IDList is a list of record ids. It decodes both ["a","b"] and
// [{"id":"a"},{"id":"b"}]. A nil IDList means the field was not sent.
type IDList []string

func (l *IDList) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*l = nil
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("id list: %w", err)
	}
	out := make(IDList, 0, len(raw))
	for _, item := range raw {
		var id string
		if err := json.Unmarshal(item, &id); err == nil {
			out = append(out, id)
			continue
		}
		var ref WhereUniqueInput
		if err := json.Unmarshal(item, &ref); err != nil || ref.ID == "" {
			return fmt.Errorf("id list: element %s is neither an id nor {\"id\": ...}", item)
		}
		out = append(out, ref.ID)
	}
	*l = out
	return nil
}

// Strings returns the ids as a plain slice, deduplicated in first-seen order.
func (l IDList) Strings() []string {
	if l == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(l))
	out := make([]string, 0, len(l))
	for _, id := range l {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func checkText(field string, v nullable.Value[string]) error {
	if s, ok := v.Get(); ok && utf8.RuneCountInString(s) > MaxTextLength {
		return fmt.Errorf("%w: %s exceeds %d characters", ErrValidation, field, MaxTextLength)
	}
	return nil
}

// setColumn records v under column when the field was sent.
func setColumn[T any](changes map[string]any, column string, v nullable.Value[T]) {
	if v.IsSet() {
		changes[column] = v.Column()
	}
}

func idsOf[T any](items []T, id func(T) string) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = id(it)
	}
	return out
}
