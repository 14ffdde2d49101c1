package comm

import (
	"sync"
	"testing"
)

func TestAllreduceSumsAcrossRanks(t *testing.T) {
	ranks := NewLocalWorld(4)
	var wg sync.WaitGroup
	results := make([]int64, 4)
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func(r int) {
			defer wg.Done()
			results[r] = ranks[r].Allreduce(int64(r + 1))
		}(r)
	}
	wg.Wait()
	for r, got := range results {
		if got != 10 {
			t.Errorf("rank %d: Allreduce = %d, want 10", r, got)
		}
	}
}

func TestBcastDeliversRootValue(t *testing.T) {
	ranks := NewLocalWorld(3)
	var wg sync.WaitGroup
	results := make([]any, 3)
	for r := 0; r < 3; r++ {
		wg.Add(1)
		go func(r int) {
			defer wg.Done()
			var mine any
			if r == 1 {
				mine = "root-value"
			}
			results[r] = ranks[r].Bcast(mine, 1)
		}(r)
	}
	wg.Wait()
	for r, got := range results {
		if got != "root-value" {
			t.Errorf("rank %d: Bcast = %v, want root-value", r, got)
		}
	}
}

func TestAlltoallExchangesCounts(t *testing.T) {
	ranks := NewLocalWorld(3)
	send := [][]int{
		{0, 1, 2},
		{3, 0, 4},
		{5, 6, 0},
	}
	var wg sync.WaitGroup
	recv := make([][]int, 3)
	for r := 0; r < 3; r++ {
		wg.Add(1)
		go func(r int) {
			defer wg.Done()
			recv[r] = ranks[r].Alltoall(send[r])
		}(r)
	}
	wg.Wait()
	want := [][]int{
		{0, 3, 5},
		{1, 0, 6},
		{2, 4, 0},
	}
	for r := range recv {
		for j := range recv[r] {
			if recv[r][j] != want[r][j] {
				t.Errorf("rank %d recv[%d] = %d, want %d", r, j, recv[r][j], want[r][j])
			}
		}
	}
}

func TestIsendIrecvRoundTrip(t *testing.T) {
	ranks := NewLocalWorld(2)
	var wg sync.WaitGroup
	var gotAtOne any
	wg.Add(2)
	go func() {
		defer wg.Done()
		req := ranks[0].Isend(1, 7, "hello")
		req.Wait()
	}()
	go func() {
		defer wg.Done()
		req := ranks[1].Irecv(0, 7)
		gotAtOne = req.Wait()
	}()
	wg.Wait()
	if gotAtOne != "hello" {
		t.Errorf("got %v, want hello", gotAtOne)
	}
}

func TestAlltoallvRedistributesPayloads(t *testing.T) {
	ranks := NewLocalWorld(2)
	sendBufs := [][]any{
		{"a0-to-0", "a0-to-1"},
		{"a1-to-0", "a1-to-1"},
	}
	sendCounts := [][]int{{1, 1}, {1, 1}}
	var wg sync.WaitGroup
	recvBufs := make([][]any, 2)
	for r := 0; r < 2; r++ {
		wg.Add(1)
		go func(r int) {
			defer wg.Done()
			recvBufs[r], _ = ranks[r].Alltoallv(sendBufs[r], sendCounts[r])
		}(r)
	}
	wg.Wait()
	if recvBufs[0][0] != "a0-to-0" || recvBufs[0][1] != "a1-to-0" {
		t.Errorf("rank 0 received %v", recvBufs[0])
	}
	if recvBufs[1][0] != "a0-to-1" || recvBufs[1][1] != "a1-to-1" {
		t.Errorf("rank 1 received %v", recvBufs[1])
	}
}
