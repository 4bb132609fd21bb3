package vm

import "testing"

func TestTickWakesExpiredSleepers(t *testing.T) {
	in := newTestInterp()
	in.State.StepNumber = 10
	in.State.Threads = []*ThreadState{
		{ID: 1, Status: StatusTimedWaiting, SleepUntilStep: 10},
		{ID: 2, Status: StatusTimedWaiting, SleepUntilStep: 11},
	}

	in.tickThreads()

	if in.State.Threads[0].Status != StatusRunnable {
		t.Errorf("expired sleeper status = %s", in.State.Threads[0].Status)
	}
	if in.State.Threads[1].Status != StatusTimedWaiting {
		t.Errorf("pending sleeper status = %s", in.State.Threads[1].Status)
	}
}

func TestTickReleasesJoinOnTermination(t *testing.T) {
	in := newTestInterp()
	in.State.Threads = []*ThreadState{
		{ID: 1, Status: StatusWaiting, JoinTarget: 2},
		{ID: 2, Status: StatusRunnable},
		{ID: 3, Status: StatusWaiting, JoinTarget: 99},
	}

	in.tickThreads()
	if in.State.Threads[0].Status != StatusWaiting {
		t.Error("join released while target alive")
	}
	// A join on a nonexistent thread releases immediately.
	if in.State.Threads[2].Status != StatusRunnable {
		t.Error("join on missing target not released")
	}

	in.State.Threads[1].Status = StatusTerminated
	in.tickThreads()
	if in.State.Threads[0].Status != StatusRunnable {
		t.Error("join not released after target terminated")
	}
}

func TestRoundRobinRotation(t *testing.T) {
	in := newTestInterp()
	in.State.Threads = []*ThreadState{
		{ID: 1, Status: StatusRunnable},
		{ID: 2, Status: StatusTerminated},
		{ID: 3, Status: StatusRunnable},
	}
	in.State.ActiveThread = 0

	in.rotateThread()
	if in.State.ActiveThread != 2 {
		t.Errorf("active = %d, want 2 (skipping terminated)", in.State.ActiveThread)
	}
	in.rotateThread()
	if in.State.ActiveThread != 0 {
		t.Errorf("active = %d, want 0 (wrapped)", in.State.ActiveThread)
	}
}

func TestMonitorReentrantAcquire(t *testing.T) {
	in := newTestInterp()
	th := &ThreadState{ID: 1, Status: StatusRunnable}
	in.State.Threads = []*ThreadState{th}

	if !in.acquireMonitor(th, 42) {
		t.Fatal("first acquire failed")
	}
	if !in.acquireMonitor(th, 42) {
		t.Fatal("reentrant acquire failed")
	}
	// Membership, not a count: one entry in the holding list.
	if len(th.HoldingMonitors) != 1 {
		t.Errorf("holding list = %v, want single entry", th.HoldingMonitors)
	}

	// Release is unconditional, not counted.
	in.releaseMonitor(th, 42)
	if th.HoldsMonitor(42) {
		t.Error("monitor still held after release")
	}
	if in.State.Monitors[42] != MonitorFree {
		t.Errorf("monitor table = %d, want free", in.State.Monitors[42])
	}
}

func TestReleaseWakesExactlyOneBlocked(t *testing.T) {
	in := newTestInterp()
	holder := &ThreadState{ID: 1, Status: StatusRunnable}
	w1 := &ThreadState{ID: 2, Status: StatusBlocked, WaitingOnMonitor: 7}
	w2 := &ThreadState{ID: 3, Status: StatusBlocked, WaitingOnMonitor: 7}
	in.State.Threads = []*ThreadState{holder, w1, w2}

	in.acquireMonitor(holder, 7)
	in.releaseMonitor(holder, 7)

	if w1.Status != StatusRunnable || w1.WaitingOnMonitor != 0 {
		t.Errorf("first waiter not woken: %s", w1.Status)
	}
	if w2.Status != StatusBlocked {
		t.Errorf("second waiter woken early: %s", w2.Status)
	}
}

func TestTerminationReleasesAllMonitors(t *testing.T) {
	in := newTestInterp()
	th := &ThreadState{ID: 1, Status: StatusRunnable}
	in.State.Threads = []*ThreadState{th}

	in.acquireMonitor(th, 1)
	in.acquireMonitor(th, 2)
	in.releaseAllMonitors(th)

	if len(th.HoldingMonitors) != 0 {
		t.Errorf("holding list = %v", th.HoldingMonitors)
	}
	for id, holder := range in.State.Monitors {
		if holder != MonitorFree {
			t.Errorf("monitor %d still held by %d", id, holder)
		}
	}
}
