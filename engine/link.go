package engine

// link is the rendezvous between the device callback and the control
// goroutine. Both channels are unbuffered, so there is at most one
// request in flight.
type link struct {
	requests chan int
	done     chan struct{}
	// quit is closed when control goroutine stops serving requests.
	quit chan struct{}
}

func newLink() *link {
	return &link{
		requests: make(chan int),
		done:     make(chan struct{}),
		quit:     make(chan struct{}),
	}
}

// request asks for n samples and waits until the control goroutine
// acknowledges it. False is returned if control goroutine has quit.
func (l *link) request(n int) bool {
	select {
	case l.requests <- n:
	case <-l.quit:
		return false
	}
	select {
	case <-l.done:
		return true
	case <-l.quit:
		return false
	}
}

// acknowledge unblocks the callback which sent the latest request.
func (l *link) acknowledge() {
	l.done <- struct{}{}
}

func (l *link) close() {
	close(l.quit)
}
