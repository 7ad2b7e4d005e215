package web

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/JonMunkholm/txnimport/internal/core"
)

// previewRows is how many data rows the session summary echoes back so the
// client can show the file next to the column picker.
const previewRows = 5

// sessionView is the JSON form of an import session.
type sessionView struct {
	ID            string                    `json:"id"`
	FileName      string                    `json:"fileName"`
	ConfigName    string                    `json:"configName"`
	CreatedAt     time.Time                 `json:"createdAt"`
	HeaderRow     int                       `json:"headerRow"`
	Headers       []string                  `json:"headers"`
	Signature     string                    `json:"signature"`
	RowCount      int                       `json:"rowCount"`
	Preview       [][]string                `json:"preview"`
	MappingSource string                    `json:"mappingSource"`
	Mapping       *core.ColumnMapping       `json:"mapping,omitempty"`
	Suggested     *core.ColumnMapping       `json:"suggested,omitempty"`
	Similar       []core.ConfigurationMatch `json:"similar,omitempty"`
	Transformed   bool                      `json:"transformed"`
	Stats         *core.TransformStats      `json:"stats,omitempty"`
	SelectedCount int                       `json:"selectedCount"`
	Candidates    []candidateView           `json:"candidates,omitempty"`
}

// candidateView adds the selection flag and the signed amount, negative for
// expenses, to a candidate.
type candidateView struct {
	Index        int             `json:"index"`
	Selected     bool            `json:"selected"`
	SignedAmount decimal.Decimal `json:"signedAmount"`
	core.Candidate
}

func newSessionView(sess *core.Session) sessionView {
	v := sessionView{
		ID:            sess.ID,
		FileName:      sess.FileName,
		ConfigName:    sess.ConfigName,
		CreatedAt:     sess.CreatedAt,
		HeaderRow:     sess.HeaderRow,
		Signature:     sess.Signature,
		MappingSource: string(sess.MappingSource),
		Transformed:   sess.Transformed,
	}
	if sess.Table != nil {
		v.Headers = sess.Table.Headers
		v.RowCount = len(sess.Table.Rows)
		v.Preview = preview(sess.Table, previewRows)
	}

	if sess.HasMapping() {
		m := sess.Mapping
		v.Mapping = &m
	} else {
		m := sess.Suggested
		v.Suggested = &m
		v.Similar = sess.Similar
	}

	if sess.Transformed {
		stats := sess.Stats
		v.Stats = &stats
		v.SelectedCount = sess.SelectedCount()
		v.Candidates = make([]candidateView, len(sess.Candidates))
		for i, c := range sess.Candidates {
			v.Candidates[i] = candidateView{
				Index:        i,
				Selected:     sess.Selected[i],
				SignedAmount: c.SignedAmount(),
				Candidate:    c,
			}
		}
	}
	return v
}

func preview(t *core.RawTable, n int) [][]string {
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	out := make([][]string, n)
	for i := 0; i < n; i++ {
		row := make([]string, len(t.Rows[i]))
		for j, c := range t.Rows[i] {
			row[j] = c.String()
		}
		out[i] = row
	}
	return out
}

// commitView is the reply to a commit.
type commitView struct {
	core.CommitResult
	Dropped int `json:"droppedCount"`
}

// mappingRequest is the body of PUT /imports/{id}/mapping.
type mappingRequest struct {
	Name    string              `json:"name"`
	Mapping *core.ColumnMapping `json:"mapping"`
}

// candidatePatch is the body of PATCH /imports/{id}/candidates/{index}.
// Omitted fields keep their current value.
type candidatePatch struct {
	Selected    *bool           `json:"selected"`
	Date        *core.Date      `json:"date"`
	Description *string         `json:"description"`
	Amount      *string         `json:"amount"`
	Direction   *core.Direction `json:"direction"`
	Category    *string         `json:"category"`
	Tags        []string        `json:"tags"`
}

func (p candidatePatch) edits() bool {
	return p.Date != nil || p.Description != nil || p.Amount != nil ||
		p.Direction != nil || p.Category != nil || p.Tags != nil
}
