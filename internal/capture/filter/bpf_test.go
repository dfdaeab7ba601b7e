package filter

import (
	"encoding/binary"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/bpf"

	"tsnprobe/internal/frame"
)

func testFrame(t *testing.T, vlan, pcp int) []byte {
	t.Helper()
	dst, err := net.ParseMAC("fa:ae:c9:26:a4:08")
	require.NoError(t, err)
	src, err := net.ParseMAC("00:e0:4c:68:13:36")
	require.NoError(t, err)
	buf, err := frame.Build(dst, src, vlan, pcp)
	require.NoError(t, err)
	return buf
}

func runProgram(t *testing.T, vid int, pkt []byte) int {
	t.Helper()
	vm, err := bpf.NewVM(Program(vid))
	require.NoError(t, err)
	out, err := vm.Run(pkt)
	require.NoError(t, err)
	return out
}

func TestProgramMatchesTaggedIPv4(t *testing.T) {
	pkt := testFrame(t, 100, 5)
	assert.Greater(t, runProgram(t, 100, pkt), 0)
	assert.Greater(t, runProgram(t, 0, pkt), 0, "vid 0 matches any VLAN")
}

func TestProgramDropsWrongVID(t *testing.T) {
	pkt := testFrame(t, 200, 5)
	assert.Zero(t, runProgram(t, 100, pkt))
	assert.Greater(t, runProgram(t, 200, pkt), 0)
}

func TestProgramDropsUntagged(t *testing.T) {
	pkt := testFrame(t, 100, 1)
	untagged := append(append([]byte{}, pkt[:12]...), pkt[16:]...)
	assert.Zero(t, runProgram(t, 100, untagged))
	assert.Zero(t, runProgram(t, 0, untagged))
}

func TestProgramDropsNonIPv4Inner(t *testing.T) {
	pkt := testFrame(t, 100, 1)
	binary.BigEndian.PutUint16(pkt[16:18], 0x0806) // ARP inside the tag
	assert.Zero(t, runProgram(t, 100, pkt))
}

func TestAssemble(t *testing.T) {
	raw, err := Assemble(100)
	require.NoError(t, err)
	assert.NotEmpty(t, raw)

	raw, err = Assemble(0)
	require.NoError(t, err)
	assert.NotEmpty(t, raw)
}
