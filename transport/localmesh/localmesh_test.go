package localmesh

import "testing"

func TestMesh_SendRecvRoundTrip(t *testing.T) {
	mesh := NewMesh(2)
	r0 := mesh.Rank(0)
	r1 := mesh.Rank(1)

	recvBuf := make([]byte, 4)
	recvReq, err := r1.IRecv(0, 0, recvBuf)
	if err != nil {
		t.Fatalf("IRecv: %v", err)
	}

	sendReq, err := r0.ISend(1, 0, []byte{1, 2, 3, 4})
	if err != nil {
		t.Fatalf("ISend: %v", err)
	}

	if ok, err := sendReq.Wait(); !ok || err != nil {
		t.Fatalf("send Wait: ok=%v err=%v", ok, err)
	}
	if ok, err := recvReq.Wait(); !ok || err != nil {
		t.Fatalf("recv Wait: ok=%v err=%v", ok, err)
	}

	want := []byte{1, 2, 3, 4}
	for i := range want {
		if recvBuf[i] != want[i] {
			t.Errorf("recvBuf[%d] = %d, want %d", i, recvBuf[i], want[i])
		}
	}
}

func TestMesh_OutOfRangeRankErrors(t *testing.T) {
	mesh := NewMesh(2)
	r0 := mesh.Rank(0)

	if _, err := r0.ISend(5, 0, []byte{1}); err == nil {
		t.Error("ISend to out-of-range rank must error")
	}
	if _, err := r0.IRecv(5, 0, make([]byte, 1)); err == nil {
		t.Error("IRecv from out-of-range rank must error")
	}
}

func TestMesh_TagsDoNotCrossTalk(t *testing.T) {
	mesh := NewMesh(2)
	r0 := mesh.Rank(0)
	r1 := mesh.Rank(1)

	bufA := make([]byte, 1)
	bufB := make([]byte, 1)
	reqA, _ := r1.IRecv(0, 1, bufA)
	reqB, _ := r1.IRecv(0, 2, bufB)

	r0.ISend(1, 2, []byte{0xBB})
	r0.ISend(1, 1, []byte{0xAA})

	reqA.Wait()
	reqB.Wait()

	if bufA[0] != 0xAA {
		t.Errorf("tag 1 payload = %x, want AA", bufA[0])
	}
	if bufB[0] != 0xBB {
		t.Errorf("tag 2 payload = %x, want BB", bufB[0])
	}
}
