// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package tools

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// MaxAttempts is the number of lookups made for one candidate before a
// transient failure becomes terminal.
const MaxAttempts = 2

// DefaultBackoff is the pause before retrying a candidate after a 502/503/504.
const DefaultBackoff = 250 * time.Millisecond

// LookupFunc fetches a single document by its exact server-side name.
type LookupFunc func(ctx context.Context, name string) (*Document, error)

// Outcome is the decision taken after one lookup attempt.
type Outcome int

const (
	// OutcomeSuccess ends the walk with the document.
	OutcomeSuccess Outcome = iota
	// OutcomeNextCandidate moves on to the next name (400, 404).
	OutcomeNextCandidate
	// OutcomeRetry repeats the same name after the backoff (502-504, first attempt).
	OutcomeRetry
	// OutcomeAbortConnectivity ends the walk: the server was never reached.
	OutcomeAbortConnectivity
	// OutcomeAbortAuth ends the walk: credentials were rejected (401, 403).
	OutcomeAbortAuth
	// OutcomeAbortGeneric ends the walk for every other failure.
	OutcomeAbortGeneric
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeNextCandidate:
		return "next_candidate"
	case OutcomeRetry:
		return "retry"
	case OutcomeAbortConnectivity:
		return "abort_connectivity"
	case OutcomeAbortAuth:
		return "abort_auth"
	case OutcomeAbortGeneric:
		return "abort_generic"
	}
	return "unknown"
}

// Decide classifies the result of attempt number attempt (starting at 1).
func Decide(err error, attempt int) Outcome {
	if err == nil {
		return OutcomeSuccess
	}
	if IsConnectivityError(err) {
		return OutcomeAbortConnectivity
	}
	code, ok := StatusCodeOf(err)
	if !ok {
		return OutcomeAbortGeneric
	}
	switch code {
	case http.StatusBadRequest, http.StatusNotFound:
		return OutcomeNextCandidate
	case http.StatusUnauthorized, http.StatusForbidden:
		return OutcomeAbortAuth
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		if attempt < MaxAttempts {
			return OutcomeRetry
		}
	}
	return OutcomeAbortGeneric
}

// FetchStatus is the overall result of a candidate walk.
type FetchStatus int

const (
	FetchFound FetchStatus = iota
	FetchNotFound
	FetchAborted
)

func (s FetchStatus) String() string {
	switch s {
	case FetchFound:
		return "found"
	case FetchNotFound:
		return "not_found"
	case FetchAborted:
		return "aborted"
	}
	return "unknown"
}

// AttemptRecord describes one failed lookup.
type AttemptRecord struct {
	Candidate  string
	StatusCode int
	Message    string
}

// FetchResult is what Fetch hands back to the tool layer.
type FetchResult struct {
	Status    FetchStatus
	Outcome   Outcome
	Candidate string
	Document  *Document
	Attempts  []AttemptRecord
	Err       error
	// Message is the host-facing text for anything but FetchFound.
	Message string
}

// Fetcher walks a candidate list against a lookup function.
//
// The zero value is usable: it waits DefaultBackoff between retries and logs
// to slog.Default().
type Fetcher struct {
	Backoff time.Duration
	// Sleep waits for d or until ctx is done. Tests replace it.
	Sleep func(ctx context.Context, d time.Duration) error
	// Target and Namespace only feed diagnostic messages.
	Target    string
	Namespace string
	Logger    *slog.Logger
}

// Fetch probes candidates in order and stops at the first success or at the
// first failure that is not a missing or invalid name.
func (f *Fetcher) Fetch(ctx context.Context, candidates []string, lookup LookupFunc) *FetchResult {
	logger := f.logger()
	res := &FetchResult{Status: FetchNotFound, Outcome: OutcomeNextCandidate}

	for _, name := range candidates {
		for attempt := 1; attempt <= MaxAttempts; attempt++ {
			doc, err := lookup(ctx, name)
			outcome := Decide(err, attempt)
			recordLookupAttempt(outcome)
			logger.Debug("fetch.attempt",
				"candidate", name,
				"attempt", attempt,
				"outcome", outcome.String(),
			)

			if outcome == OutcomeSuccess {
				res.Status = FetchFound
				res.Outcome = outcome
				res.Candidate = name
				res.Document = doc
				return res
			}

			code, _ := StatusCodeOf(err)
			res.Attempts = append(res.Attempts, AttemptRecord{
				Candidate:  name,
				StatusCode: code,
				Message:    err.Error(),
			})

			switch outcome {
			case OutcomeNextCandidate:
			case OutcomeRetry:
				if serr := f.sleep(ctx); serr != nil {
					return f.abort(res, OutcomeAbortGeneric, name, serr)
				}
				continue
			default:
				return f.abort(res, outcome, name, err)
			}
			break
		}
	}

	res.Message = f.notFoundMessage(res.Attempts)
	logger.Info("fetch.not_found", "candidates", len(candidates))
	return res
}

func (f *Fetcher) abort(res *FetchResult, outcome Outcome, name string, err error) *FetchResult {
	res.Status = FetchAborted
	res.Outcome = outcome
	res.Candidate = name
	res.Err = err
	res.Message = describe(outcome, err, f.Target, f.Namespace, name)
	f.logger().Warn("fetch.aborted",
		"candidate", name,
		"outcome", outcome.String(),
		"err", err,
	)
	return res
}

func (f *Fetcher) sleep(ctx context.Context) error {
	d := f.Backoff
	if d <= 0 {
		d = DefaultBackoff
	}
	if f.Sleep != nil {
		return f.Sleep(ctx, d)
	}
	return sleepContext(ctx, d)
}

func (f *Fetcher) logger() *slog.Logger {
	if f.Logger != nil {
		return f.Logger
	}
	return slog.Default()
}

func (f *Fetcher) notFoundMessage(attempts []AttemptRecord) string {
	var sb strings.Builder
	sb.WriteString("Document not found")
	if f.Namespace != "" {
		fmt.Fprintf(&sb, " in namespace %s", f.Namespace)
	}
	if len(attempts) == 0 {
		sb.WriteString(": no candidate names to try.")
		return sb.String()
	}
	sb.WriteString(". Tried:")

	seen := make(map[string]bool)
	for _, a := range attempts {
		if seen[a.Candidate] {
			continue
		}
		seen[a.Candidate] = true
		sb.WriteString("\n- ")
		sb.WriteString(a.Candidate)
	}
	return sb.String()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// DescribeError turns a remote failure into host-facing text using the same
// classification as the candidate walk.
func DescribeError(err error, target, namespace string) string {
	return describe(Decide(err, MaxAttempts), err, target, namespace, "")
}

func describe(outcome Outcome, err error, target, namespace, candidate string) string {
	where := target
	if where == "" {
		where = "the IRIS server"
	}

	switch outcome {
	case OutcomeAbortConnectivity:
		return fmt.Sprintf("Cannot connect to %s: %v\n\n"+
			"Check IRIS_HOST, IRIS_PORT and IRIS_SCHEME (or IRIS_BASE_URL) and that the "+
			"IRIS web server is running and reachable from this machine.", where, err)
	case OutcomeAbortAuth:
		code, _ := StatusCodeOf(err)
		msg := fmt.Sprintf("Authentication failed (HTTP %d) for %s.\n\n"+
			"Check IRIS_USERNAME and IRIS_PASSWORD", code, where)
		if namespace != "" {
			msg += fmt.Sprintf(" and that the user may access namespace %s", namespace)
		}
		return msg + "."
	case OutcomeNextCandidate:
		return fmt.Sprintf("Not found: %v", err)
	}

	if candidate != "" {
		return fmt.Sprintf("Request for %s failed: %v", candidate, err)
	}
	return fmt.Sprintf("Request failed: %v", err)
}
