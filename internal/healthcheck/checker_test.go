package healthcheck

import "testing"

func TestOverall(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		statuses []string
		want     string
	}{
		{name: "empty", want: StatusOK},
		{name: "all ok", statuses: []string{StatusOK, StatusOK}, want: StatusOK},
		{name: "warn", statuses: []string{StatusOK, StatusWarn}, want: StatusWarn},
		{name: "unknown counts as warn", statuses: []string{StatusUnknown}, want: StatusWarn},
		{name: "error wins", statuses: []string{StatusWarn, StatusError, StatusOK}, want: StatusError},
	}
	for _, tc := range cases {
		results := make([]CheckResult, 0, len(tc.statuses))
		for _, s := range tc.statuses {
			results = append(results, CheckResult{Status: s})
		}
		if got := Overall(results); got != tc.want {
			t.Fatalf("%s: want %s got %s", tc.name, tc.want, got)
		}
	}
}
