package domain

import "testing"

func TestMatchRecordResultFor(t *testing.T) {
	winner := int64(7)
	m := &MatchRecord{PlayerAID: 7, PlayerBID: 9, WinnerID: &winner}

	cases := []struct {
		player int64
		want   MatchResult
	}{
		{7, MatchResultWin},
		{9, MatchResultLose},
	}
	for _, tc := range cases {
		if got := m.ResultFor(tc.player); got != tc.want {
			t.Fatalf("ResultFor(%d) = %s; want %s", tc.player, got, tc.want)
		}
	}

	if got := (&MatchRecord{PlayerAID: 7, PlayerBID: 9}).ResultFor(7); got != MatchResultDraw {
		t.Fatalf("no winner should be a draw, got %s", got)
	}
	if got := m.OpponentOf(9); got != 7 {
		t.Fatalf("OpponentOf(9) = %d; want 7", got)
	}
}
