package dragdrop

// DragType identifies what an active drag is moving.
type DragType uint8

const (
	DragNone DragType = iota
	DragColumn
	DragTask
)

func (t DragType) String() string {
	switch t {
	case DragColumn:
		return "column"
	case DragTask:
		return "task"
	default:
		return "none"
	}
}

// Session holds the state of the single in-flight drag.
type Session struct {
	dragType            DragType
	sourceID            int64
	sourceColumnID      int64
	targetColumnID      int64
	returningToOriginal bool
	originalPosition    Rect
	onEnd               []func()
}

// Begin starts a drag. sourceColumnID is required for task drags and
// ignored for column drags.
func (s *Session) Begin(dragType DragType, sourceID, sourceColumnID int64) error {
	if s.IsActive() {
		return ErrInvalidState
	}
	switch dragType {
	case DragColumn:
		sourceColumnID = 0
	case DragTask:
		if sourceColumnID <= 0 {
			return ErrMalformedID
		}
	default:
		return ErrInvalidState
	}
	if sourceID <= 0 {
		return ErrMalformedID
	}
	s.dragType = dragType
	s.sourceID = sourceID
	s.sourceColumnID = sourceColumnID
	return nil
}

// SetTarget records the column currently targeted. Zero clears it.
func (s *Session) SetTarget(columnID int64) {
	if !s.IsActive() {
		return
	}
	s.targetColumnID = max(columnID, 0)
}

// MarkReturningToOriginal flags a column drag hovering its own origin.
func (s *Session) MarkReturningToOriginal(returning bool) {
	if !s.IsActive() {
		return
	}
	s.returningToOriginal = returning
}

// SetOriginalPosition snapshots the geometry of the dragged column.
func (s *Session) SetOriginalPosition(rect Rect) {
	if s.dragType != DragColumn {
		return
	}
	s.originalPosition = rect
}

// OnEnd registers fn to run on every End, so side effects such as
// highlights are cleared together with the session.
func (s *Session) OnEnd(fn func()) {
	if fn != nil {
		s.onEnd = append(s.onEnd, fn)
	}
}

// End clears the session and runs end hooks. It is safe to call repeatedly.
func (s *Session) End() {
	hooks := s.onEnd
	*s = Session{onEnd: hooks}
	for _, fn := range hooks {
		fn()
	}
}

func (s *Session) IsActive() bool            { return s.dragType != DragNone }
func (s *Session) DragType() DragType        { return s.dragType }
func (s *Session) SourceID() int64           { return s.sourceID }
func (s *Session) SourceColumnID() int64     { return s.sourceColumnID }
func (s *Session) ReturningToOriginal() bool { return s.returningToOriginal }
func (s *Session) OriginalPosition() Rect    { return s.originalPosition }

// TargetColumnID returns the targeted column, if any.
func (s *Session) TargetColumnID() (int64, bool) {
	return s.targetColumnID, s.targetColumnID > 0
}
