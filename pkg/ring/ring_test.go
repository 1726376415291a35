package ring

import "testing"

// TestSelectMatrix checks every row of the feature selection matrix from
// spec.md §4.C.
func TestSelectMatrix(t *testing.T) {
	cases := []struct {
		name       string
		submit     SubmitDiscipline
		completion CompletionDiscipline
		want       FeatureFlags
	}{
		{"submit-and-wait/interrupt", SubmitAndWait, Interrupt,
			FeatureFlags{SingleIssuer: true, DeferredTaskRun: true}},
		{"submit-and-wait/iopoll", SubmitAndWait, IOPoll,
			FeatureFlags{SingleIssuer: true, IOPoll: true}},
		{"split-submit-wait/interrupt", SplitSubmitWait, Interrupt,
			FeatureFlags{SingleIssuer: true, DeferredTaskRun: true}},
		{"split-submit-wait/iopoll", SplitSubmitWait, IOPoll,
			FeatureFlags{SingleIssuer: true, IOPoll: true}},
		{"sq-poll/interrupt", SQPoll, Interrupt,
			FeatureFlags{SQPoll: true, SQThreadIdleMs: 2000, SingleIssuer: true}},
		{"sq-poll/iopoll", SQPoll, IOPoll,
			FeatureFlags{SQPoll: true, SQThreadIdleMs: 2000, SingleIssuer: true, IOPoll: true}},
	}

	for _, c := range cases {
		got := Select(c.submit, c.completion)
		if got != c.want {
			t.Errorf("%s: Select() = %+v, want %+v", c.name, got, c.want)
		}
	}
}
