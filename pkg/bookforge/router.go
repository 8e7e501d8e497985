package bookforge

// Route is the single source of control-flow truth: a pure function
// from BookState to the next stage. It performs no side effects and is
// idempotent — calling it repeatedly on the same state yields the same
// decision, which is what makes resume-from-checkpoint safe.
//
// Transition table:
//   - status failed                  -> Failed (short-circuits everything)
//   - status completed               -> Completed
//   - no title                       -> AwaitingTitle
//   - title set, outline empty       -> AwaitingOutline
//   - cursor < len(outline)          -> WritingChapters
//   - all chapters, no review notes  -> AwaitingReview
//   - review notes, no artifact      -> AwaitingExport
//   - artifact produced              -> Completed
func Route(state BookState) Stage {
	switch {
	case state.Status == StatusFailed:
		return StageFailed
	case state.Status == StatusCompleted:
		return StageCompleted
	case state.Title == "":
		return StageAwaitingTitle
	case len(state.Outline) == 0:
		return StageAwaitingOutline
	case state.CurrentChapter < len(state.Outline):
		return StageWritingChapters
	case state.Review == nil:
		return StageAwaitingReview
	case state.ArtifactPath == "":
		return StageAwaitingExport
	default:
		return StageCompleted
	}
}
