// Copyright 2024 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package event

import (
	"fmt"
	"sync/atomic"

	"github.com/mdlayher/genetlink"
	"github.com/mdlayher/netlink"
	"github.com/mdlayher/netlink/nlenc"
	"go.uber.org/zap"
)

// Subscription delivers the matching events of one Filter to a Handler
// from a single goroutine until Close is called.
type Subscription struct {
	c      *genetlink.Conn
	f      Filter
	h      Handler
	log    *zap.SugaredLogger
	closed atomic.Bool
	done   chan struct{}
}

// Subscribe joins the ACPI event multicast group and starts delivering
// events matching f to h.
func Subscribe(f Filter, h Handler, log *zap.SugaredLogger) (*Subscription, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	c, err := genetlink.Dial(nil)
	if err != nil {
		return nil, fmt.Errorf("genetlink.Dial: %v", err)
	}
	fam, err := c.GetFamily(FamilyName)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("family %s: %v", FamilyName, err)
	}
	joined := false
	for _, g := range fam.Groups {
		if g.Name != GroupName {
			continue
		}
		if err := c.JoinGroup(g.ID); err != nil {
			c.Close()
			return nil, fmt.Errorf("join %s: %v", GroupName, err)
		}
		joined = true
	}
	if !joined {
		c.Close()
		return nil, fmt.Errorf("family %s has no group %s", FamilyName, GroupName)
	}
	s := &Subscription{c: c, f: f, h: h, log: log, done: make(chan struct{})}
	go s.run()
	return s, nil
}

func (s *Subscription) run() {
	defer close(s.done)
	for {
		msgs, _, err := s.c.Receive()
		if s.closed.Load() {
			return
		}
		if err != nil {
			s.log.Errorf("Receiving ACPI events failed: %v", err)
			return
		}
		s.deliver(msgs)
	}
}

func (s *Subscription) deliver(msgs []genetlink.Message) {
	for _, e := range decodeMessages(msgs, s.log) {
		if !s.f.Match(e) {
			continue
		}
		s.log.Debugf("ACPI event %v", e)
		s.h(e)
	}
}

func decodeMessages(msgs []genetlink.Message, log *zap.SugaredLogger) []Event {
	var r []Event
	for _, m := range msgs {
		if m.Header.Command != cmdEvent {
			continue
		}
		ad, err := netlink.NewAttributeDecoder(m.Data)
		if err != nil {
			log.Warnf("Malformed ACPI event message: %v", err)
			continue
		}
		for ad.Next() {
			if ad.Type() != attrEvent {
				continue
			}
			e, err := Decode(ad.Bytes(), nlenc.NativeEndian())
			if err != nil {
				log.Warnf("Malformed ACPI event: %v", err)
				continue
			}
			r = append(r, e)
		}
		if err := ad.Err(); err != nil {
			log.Warnf("Malformed ACPI event attributes: %v", err)
		}
	}
	return r
}

// Close stops delivery and waits for an in-flight handler to return.
func (s *Subscription) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	err := s.c.Close()
	<-s.done
	return err
}
