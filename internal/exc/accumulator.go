// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package exc

import (
	"fmt"
	"io"
	"sync"
)

// Reporter is used to accumulate and report diagnostics while lexing and
// parsing. Lexers and parsers report a problem and continue processing rather
// than fail outright. The final set can then be shown to the user.
type Reporter interface {
	// Report adds the given record to the set. If this method returns an error
	// then the given error is considered fatal.
	Report(Exception) Exception
	// Reported returns the set of accumulated exceptions.
	Reported() []Exception
}

// NewReporter returns a concurrent-safe implementation of Reporter.
func NewReporter(nonFatal []string) Reporter {
	nf := make(map[string]bool, len(defaultNonFatal))
	for k := range defaultNonFatal {
		nf[k] = true
	}
	for _, k := range nonFatal {
		nf[k] = true
	}
	return &reporterLock{
		Reporter: &reporter{
			nonFatal: nf,
		},
		lock: &sync.Mutex{},
	}
}

type reporter struct {
	reported []Exception
	nonFatal map[string]bool
}

func (r *reporter) Report(e Exception) Exception {
	r.reported = append(r.reported, e)
	if r.nonFatal[e.Code()] {
		return nil
	}
	return e
}

func (r *reporter) Reported() []Exception {
	return r.reported
}

type reporterLock struct {
	Reporter
	lock sync.Locker
}

func (r *reporterLock) Report(e Exception) Exception {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.Reporter.Report(e)
}

func (r *reporterLock) Reported() []Exception {
	r.lock.Lock()
	defer r.lock.Unlock()
	out := make([]Exception, len(r.Reporter.Reported()))
	copy(out, r.Reporter.Reported())
	return out
}

// NewConsoleReporter wraps a Reporter so that every reported message is also
// written, one per line, to w. Write failures are ignored.
func NewConsoleReporter(inner Reporter, w io.Writer) Reporter {
	return &reporterConsole{
		Reporter: inner,
		w:        w,
		lock:     &sync.Mutex{},
	}
}

type reporterConsole struct {
	Reporter
	w    io.Writer
	lock sync.Locker
}

func (r *reporterConsole) Report(e Exception) Exception {
	r.lock.Lock()
	_, _ = fmt.Fprintln(r.w, e.Message())
	r.lock.Unlock()
	return r.Reporter.Report(e)
}

// Fatal returns the first reported exception whose code is fatal under the
// default policy.
func Fatal(r Reporter) Exception {
	for _, e := range r.Reported() {
		if IsFatal(e.Code()) {
			return e
		}
	}
	return nil
}
