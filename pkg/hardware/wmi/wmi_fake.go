// Copyright 2024 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wmi

import (
	"sync"
)

// FakeCall records one evaluation seen by a FakeTransport.
type FakeCall struct {
	GUID     string
	Function Function
	Arg      []byte
}

// FakeTransport answers method calls from a per-function table. It is
// used by tests of code sitting on top of a Channel.
type FakeTransport struct {
	lock     sync.Mutex
	results  map[Function]Object
	failures map[Function]error
	calls    []FakeCall
	released int
	issued   int
}

var _ Transport = &FakeTransport{}

func NewFakeTransport() *FakeTransport {
	return &FakeTransport{
		results:  make(map[Function]Object),
		failures: make(map[Function]error),
	}
}

// SetResult makes fn return the integer v.
func (f *FakeTransport) SetResult(fn Function, v uint64) {
	f.SetObject(fn, Object{Type: TypeInteger, Integer: v})
}

// SetObject makes fn return o.
func (f *FakeTransport) SetObject(fn Function, o Object) {
	f.lock.Lock()
	defer f.lock.Unlock()
	delete(f.failures, fn)
	f.results[fn] = o
}

// SetFailure makes fn fail with the status err.
func (f *FakeTransport) SetFailure(fn Function, err error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.failures[fn] = err
}

func (f *FakeTransport) Evaluate(guid string, instance uint8, method uint32, in []byte) (*Object, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	fn := Function(method)
	f.calls = append(f.calls, FakeCall{GUID: guid, Function: fn, Arg: append([]byte(nil), in...)})
	if err, ok := f.failures[fn]; ok {
		return nil, err
	}
	o, ok := f.results[fn]
	if !ok {
		o = Object{Type: TypeInteger, Integer: 0}
	}
	f.issued++
	return NewObject(o, func() {
		f.lock.Lock()
		f.released++
		f.lock.Unlock()
	}), nil
}

// Calls returns every call made to fn, in order.
func (f *FakeTransport) Calls(fn Function) []FakeCall {
	f.lock.Lock()
	defer f.lock.Unlock()
	var r []FakeCall
	for _, c := range f.calls {
		if c.Function == fn {
			r = append(r, c)
		}
	}
	return r
}

// Outstanding returns how many issued responses have not been released.
func (f *FakeTransport) Outstanding() int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.issued - f.released
}
