package question

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyResponse = errors.New("response is empty")
	ErrUnknownOption = errors.New("option does not belong to question")
	ErrUnknownItem   = errors.New("item does not belong to question")
	ErrUnknownZone   = errors.New("zone does not belong to question")
)

// Evaluate reports whether resp is a correct answer to q. It has no side effects.
func Evaluate(q Question, resp Response) bool {
	switch q.Type {
	case TypeMultipleChoice:
		for _, opt := range q.Options {
			if opt.ID == resp.OptionID {
				return opt.IsCorrect
			}
		}
		return false
	case TypeFillInBlank:
		got := normalize(resp.Text, q.CaseSensitive)
		if got == "" {
			return false
		}
		for _, accepted := range q.AcceptedAnswers {
			if normalize(accepted, q.CaseSensitive) == got {
				return true
			}
		}
		return false
	case TypeTrueFalse:
		return resp.Value != nil && *resp.Value == q.CorrectAnswer
	case TypeDragDrop:
		if len(q.Items) == 0 {
			return false
		}
		for _, item := range q.Items {
			zone, ok := resp.Placements[item.ID]
			if !ok || zone != item.CorrectZoneID {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// ValidateResponse checks that resp is a well-formed submission for q. A
// response that fails validation must not be recorded.
func ValidateResponse(q Question, resp Response) error {
	switch q.Type {
	case TypeMultipleChoice:
		if resp.OptionID == "" {
			return ErrEmptyResponse
		}
		for _, opt := range q.Options {
			if opt.ID == resp.OptionID {
				return nil
			}
		}
		return fmt.Errorf("%w: %q", ErrUnknownOption, resp.OptionID)
	case TypeFillInBlank:
		if strings.TrimSpace(resp.Text) == "" {
			return ErrEmptyResponse
		}
		return nil
	case TypeTrueFalse:
		if resp.Value == nil {
			return ErrEmptyResponse
		}
		return nil
	case TypeDragDrop:
		if len(resp.Placements) == 0 {
			return ErrEmptyResponse
		}
		for itemID, zoneID := range resp.Placements {
			if !hasItem(q, itemID) {
				return fmt.Errorf("%w: %q", ErrUnknownItem, itemID)
			}
			if !hasZone(q, zoneID) {
				return fmt.Errorf("%w: %q", ErrUnknownZone, zoneID)
			}
		}
		return nil
	default:
		return fmt.Errorf("unsupported question type %q", q.Type)
	}
}

func normalize(s string, caseSensitive bool) string {
	s = strings.TrimSpace(s)
	if !caseSensitive {
		s = strings.ToLower(s)
	}
	return s
}

func hasItem(q Question, id string) bool {
	for _, item := range q.Items {
		if item.ID == id {
			return true
		}
	}
	return false
}

func hasZone(q Question, id string) bool {
	for _, zone := range q.Zones {
		if zone.ID == id {
			return true
		}
	}
	return false
}
