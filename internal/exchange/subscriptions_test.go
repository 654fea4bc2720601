package exchange

import (
	"testing"

	"github.com/jellychn/zentra-sub000/internal/domain"
)

type recordingSender struct {
	sent []Command
	err  error
}

func (r *recordingSender) Send(cmd Command) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, cmd)
	return nil
}

func TestCommandsCoverEveryChannel(t *testing.T) {
	subs := NewSubscriptions(testLogger())
	cmds := subs.Commands("BTCUSDT")

	want := 3 + len(domain.Intervals)
	if len(cmds) != want {
		t.Fatalf("want %d commands, got %d", want, len(cmds))
	}
	if cmds[0].Method != methodTickSubscribe {
		t.Fatalf("first method = %q", cmds[0].Method)
	}
	if cmds[1].Method != methodOrderBookSubscribe {
		t.Fatalf("second method = %q", cmds[1].Method)
	}
	if cmds[1].Params[1] != fullBookDepth {
		t.Fatalf("book depth = %v, want full depth", cmds[1].Params[1])
	}
	if cmds[2].Method != methodTradeSubscribe {
		t.Fatalf("third method = %q", cmds[2].Method)
	}
	for i, cmd := range cmds[3:] {
		if cmd.Method != methodKlineSubscribe {
			t.Fatalf("kline command %d method = %q", i, cmd.Method)
		}
		if cmd.Params[1] != domain.Intervals[i].Seconds() {
			t.Fatalf("kline command %d resolution = %v", i, cmd.Params[1])
		}
	}
}

func TestCommandIDsIncrease(t *testing.T) {
	subs := NewSubscriptions(testLogger())
	cmds := subs.Commands("BTCUSDT")
	for i := 1; i < len(cmds); i++ {
		if cmds[i].ID <= cmds[i-1].ID {
			t.Fatalf("ids not increasing: %d then %d", cmds[i-1].ID, cmds[i].ID)
		}
	}
}

func TestSubscribeSendsForAllSymbols(t *testing.T) {
	subs := NewSubscriptions(testLogger())
	sender := &recordingSender{}

	if err := subs.Subscribe(sender, []string{"BTCUSDT", "ETHUSDT"}); err != nil {
		t.Fatal(err)
	}
	want := 2 * (3 + len(domain.Intervals))
	if len(sender.sent) != want {
		t.Fatalf("sent %d commands, want %d", len(sender.sent), want)
	}
}

func TestSubscribePropagatesSendError(t *testing.T) {
	subs := NewSubscriptions(testLogger())
	sender := &recordingSender{err: domain.ErrNotConnected}

	if err := subs.Subscribe(sender, []string{"BTCUSDT"}); err == nil {
		t.Fatal("want error when the sender fails")
	}
}
