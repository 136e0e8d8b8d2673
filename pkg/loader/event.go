package loader

// State is the lifecycle of a single load request.
// Idle -> Loading -> {Loaded | Failed}; a cache hit goes straight to Loaded.
type State int32

const (
	StateIdle State = iota
	StateLoading
	StateLoaded
	StateFailed
)

// Terminal reports whether no further transitions occur for the request.
func (s State) Terminal() bool {
	return s == StateLoaded || s == StateFailed
}

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateLoading:
		return "Loading"
	case StateLoaded:
		return "Loaded"
	case StateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Event is a state transition published to observers.
// Image is non-nil iff State is Loaded, Err is non-nil iff State is Failed.
type Event struct {
	Key   string
	State State
	Image *Image
	Err   error
}

// Observer receives the state transitions of a load request. Asynchronous
// events for all requests of one loader are delivered sequentially on a
// single goroutine; callbacks must not block for long and must not call
// Loader.Close.
type Observer interface {
	OnImageEvent(event Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(event Event)

func (f ObserverFunc) OnImageEvent(event Event) {
	f(event)
}
