// Copyright 2024 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package power tracks system sleep transitions.
package power

import (
	"fmt"
	"strings"
	"sync"
)

// Transition uses the values of the kernel PM notifier chain.
type Transition int

const (
	PrepareHibernation Transition = 1
	PostHibernation    Transition = 2
	PrepareSuspend     Transition = 3
	PostSuspend        Transition = 4
	PrepareRestore     Transition = 5
	PostRestore        Transition = 6
)

func (t Transition) String() string {
	switch t {
	case PrepareHibernation:
		return "PM_HIBERNATION_PREPARE"
	case PostHibernation:
		return "PM_POST_HIBERNATION"
	case PrepareSuspend:
		return "PM_SUSPEND_PREPARE"
	case PostSuspend:
		return "PM_POST_SUSPEND"
	case PrepareRestore:
		return "PM_RESTORE_PREPARE"
	case PostRestore:
		return "PM_POST_RESTORE"
	}
	return fmt.Sprintf("PM_%d", int(t))
}

// IsResume reports whether t marks the return from a low-power state.
func (t Transition) IsResume() bool {
	return t == PostHibernation || t == PostSuspend || t == PostRestore
}

// IsPrepare reports whether t announces entering a low-power state.
func (t Transition) IsPrepare() bool {
	return t == PrepareHibernation || t == PrepareSuspend || t == PrepareRestore
}

// ParseHook maps the arguments systemd passes to system-sleep hooks,
// e.g. "post" "suspend", to a transition. The kind may repeat the
// phase, as in "post" "post-restore".
func ParseHook(phase, kind string) (Transition, error) {
	var pre bool
	phase, kind = strings.ToLower(phase), strings.ToLower(kind)
	// "post post-restore" names the phase twice, a mismatching prefix
	// stays and fails below.
	kind = strings.TrimPrefix(kind, phase+"-")
	switch phase {
	case "pre":
		pre = true
	case "post":
	default:
		return 0, fmt.Errorf("unknown sleep phase %q", phase)
	}
	switch kind {
	case "suspend":
		if pre {
			return PrepareSuspend, nil
		}
		return PostSuspend, nil
	case "hibernate", "hybrid-sleep", "suspend-then-hibernate":
		if pre {
			return PrepareHibernation, nil
		}
		return PostHibernation, nil
	case "restore":
		if pre {
			return PrepareRestore, nil
		}
		return PostRestore, nil
	}
	return 0, fmt.Errorf("unknown sleep kind %q", kind)
}

// Handler is called for every transition.
type Handler func(Transition)

// Notifier is a chain of handlers, called in registration order.
type Notifier struct {
	m        sync.Mutex
	next     int
	handlers map[int]Handler
	order    []int
}

func NewNotifier() *Notifier {
	return &Notifier{handlers: make(map[int]Handler)}
}

// Register adds h to the chain and returns the function removing it.
func (n *Notifier) Register(h Handler) (unregister func()) {
	n.m.Lock()
	defer n.m.Unlock()
	id := n.next
	n.next++
	n.handlers[id] = h
	n.order = append(n.order, id)
	return func() {
		n.m.Lock()
		defer n.m.Unlock()
		delete(n.handlers, id)
		for i, o := range n.order {
			if o == id {
				n.order = append(n.order[:i], n.order[i+1:]...)
				break
			}
		}
	}
}

// Notify calls every registered handler with t.
func (n *Notifier) Notify(t Transition) {
	n.m.Lock()
	hs := make([]Handler, 0, len(n.order))
	for _, id := range n.order {
		hs = append(hs, n.handlers[id])
	}
	n.m.Unlock()
	for _, h := range hs {
		h(t)
	}
}
