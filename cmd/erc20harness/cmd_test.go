package main_test

import (
	"bytes"
	"context"
	"io"
	"math/big"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/require"

	main "github.com/EscanBE/erc20harness/cmd/erc20harness"
	"github.com/EscanBE/erc20harness/erc20"
	"github.com/EscanBE/erc20harness/testutil"
	harnesstypes "github.com/EscanBE/erc20harness/types"
	"github.com/EscanBE/erc20harness/utils"
)

//goland:noinspection SpellCheckingInspection
var (
	daiAddress   = common.HexToAddress("0x6b175474e89094c44da98b954eedeac495271d0f")
	daiSource    = common.HexToAddress("0x681Bd23F6128dB3F9b8914595d1a63830a6212fA")
	receiver     = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	otherAccount = common.HexToAddress("0x00000000000000000000000000000000000000bb")
)

func execute(args ...string) (string, error) {
	rootCmd := main.NewRootCmd()

	out := new(bytes.Buffer)
	rootCmd.SetOut(out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(append(args, "--env-file=", "--log-level=none"))

	err := rootCmd.ExecuteContext(context.Background())
	return strings.TrimSpace(out.String()), err
}

func startFakeNode(t *testing.T) (*testutil.FakeDevNode, string) {
	node := testutil.NewFakeDevNode()
	rpcServer, err := node.Server()
	require.NoError(t, err)

	httpServer := httptest.NewServer(rpcServer)
	t.Cleanup(func() {
		httpServer.Close()
		rpcServer.Stop()
	})

	return node, "--node-url=" + httpServer.URL
}

func TestNormalizeCmd(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		want      string
		wantErrIs error
	}{
		{
			name: "pass - truncates extra fraction digits",
			args: []string{"1.123456", "3"},
			want: "1123",
		},
		{
			name: "pass - whole tokens",
			args: []string{"10000", "18"},
			want: "10000000000000000000000",
		},
		{
			name:      "fail - not a decimal",
			args:      []string{"abc", "18"},
			wantErrIs: harnesstypes.ErrInvalidAmount,
		},
		{
			name: "pass - precision with leading zero is decimal",
			args: []string{"1", "010"},
			want: "10000000000",
		},
		{
			name: "pass - precision 08",
			args: []string{"1", "08"},
			want: "100000000",
		},
		{
			name:      "fail - bad precision",
			args:      []string{"1", "x"},
			wantErrIs: harnesstypes.ErrInvalidPrecision,
		},
		{
			name:      "fail - hex precision",
			args:      []string{"1", "0x12"},
			wantErrIs: harnesstypes.ErrInvalidPrecision,
		},
		{
			name:      "fail - negative precision",
			args:      []string{"1", "-1"},
			wantErrIs: harnesstypes.ErrInvalidPrecision,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(append([]string{"normalize"}, tt.args...)...)
			if tt.wantErrIs != nil {
				require.ErrorIs(t, err, tt.wantErrIs)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, out)
		})
	}
}

func TestFormatCmd(t *testing.T) {
	out, err := execute("format", "1500000000000000000", "18")
	require.NoError(t, err)
	require.Equal(t, "1.5", out)

	_, err = execute("format", "1.5", "18")
	require.ErrorIs(t, err, harnesstypes.ErrInvalidAmount)
}

func TestKeccakCmd(t *testing.T) {
	out, err := execute("keccak", "hello")
	require.NoError(t, err)
	require.Equal(t, "0x1c8aff950685c2ed4bc3174f3472287b56d9517b9c948127319a09a7a36deac8", out)
}

func TestMineCmd(t *testing.T) {
	node, nodeFlag := startFakeNode(t)

	out, err := execute("mine", "3", nodeFlag)
	require.NoError(t, err)
	require.Equal(t, "3", out)

	out, err = execute("mine", nodeFlag)
	require.NoError(t, err)
	require.Equal(t, "4", out)

	out, err = execute("mine", "010", nodeFlag)
	require.NoError(t, err)
	require.Equal(t, "14", out)

	_, err = execute("mine", "0x2", nodeFlag)
	require.Error(t, err)

	node.Lock()
	defer node.Unlock()
	require.Equal(t, uint64(14), node.Height)
}

func TestForkCmd(t *testing.T) {
	node, nodeFlag := startFakeNode(t)

	_, err := execute("fork", nodeFlag, "--mainnet-url=")
	require.Error(t, err, "fork requires a mainnet url")

	out, err := execute("fork", nodeFlag, "--mainnet-url=https://mainnet.example")
	require.NoError(t, err)
	require.Equal(t, "11880158", out)

	out, err = execute("fork", nodeFlag, "--mainnet-url=https://mainnet.example", "--fork-block=12000000")
	require.NoError(t, err)
	require.Equal(t, "12000000", out)

	node.Lock()
	defer node.Unlock()
	require.Len(t, node.Resets, 2)
	require.Equal(t, "https://mainnet.example", node.Resets[0].Forking.JSONRPCURL)
}

func TestFundCmd(t *testing.T) {
	t.Run("pass - fund from the known source", func(t *testing.T) {
		node, nodeFlag := startFakeNode(t)
		node.TokenBalances[daiSource] = utils.MustNumberToBigInt("1000", 18)

		out, err := execute("fund", "DAI", receiver.Hex(), "25.5", nodeFlag)
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(out, "0x"))
		require.Len(t, out, 66)

		expectedData, err := erc20.PackTransfer(receiver, utils.MustNumberToBigInt("25.5", 18))
		require.NoError(t, err)

		node.Lock()
		defer node.Unlock()
		require.True(t, node.Impersonated[daiSource])
		require.Equal(t, utils.MustNumberToBigInt("1", 18).String(), node.Balances[daiSource].String(), "source must be topped up for gas")
		require.Len(t, node.Sent, 1)
		require.Equal(t, daiSource, *node.Sent[0].From)
		require.Equal(t, daiAddress, *node.Sent[0].To)
		require.Equal(t, hexutil.Bytes(expectedData), *node.Sent[0].Data)
	})

	t.Run("pass - source override and literal token address", func(t *testing.T) {
		node, nodeFlag := startFakeNode(t)
		node.TokenBalances[otherAccount] = big.NewInt(100)
		node.Balances[otherAccount] = utils.MustNumberToBigInt("5", 18)
		node.TokenDecimals = 0

		_, err := execute("fund", daiAddress.Hex(), receiver.Hex(), "100", "--source="+otherAccount.Hex(), nodeFlag)
		require.NoError(t, err)

		node.Lock()
		defer node.Unlock()
		require.Len(t, node.Sent, 1)
		require.Equal(t, otherAccount, *node.Sent[0].From)
		require.Equal(t, utils.MustNumberToBigInt("5", 18).String(), node.Balances[otherAccount].String(), "funded sources are not touched")
	})

	t.Run("fail - source holds too little", func(t *testing.T) {
		node, nodeFlag := startFakeNode(t)
		node.TokenBalances[daiSource] = utils.MustNumberToBigInt("10", 18)

		_, err := execute("fund", "DAI", receiver.Hex(), "10.000000000000000001", nodeFlag)
		require.ErrorIs(t, err, harnesstypes.ErrInsufficientSourceFunds)

		node.Lock()
		defer node.Unlock()
		require.Empty(t, node.Sent)
	})

	t.Run("fail - unknown token", func(t *testing.T) {
		_, nodeFlag := startFakeNode(t)
		_, err := execute("fund", "NOPE", receiver.Hex(), "1", nodeFlag)
		require.ErrorIs(t, err, harnesstypes.ErrUnknownToken)
	})

	t.Run("fail - bad recipient", func(t *testing.T) {
		_, nodeFlag := startFakeNode(t)
		_, err := execute("fund", "DAI", "0x1234", "1", nodeFlag)
		require.Error(t, err)
	})
}

func TestBalanceCmd(t *testing.T) {
	node, nodeFlag := startFakeNode(t)
	node.TokenBalances[receiver] = utils.MustNumberToBigInt("1.25", 18)

	out, err := execute("balance", "DAI", receiver.Hex(), otherAccount.Hex(), nodeFlag)
	require.NoError(t, err)
	require.Equal(t, receiver.Hex()+" 1.25\n"+otherAccount.Hex()+" 0", out)
}

func TestNodeInfoCmd(t *testing.T) {
	node, nodeFlag := startFakeNode(t)
	node.Height = 7

	out, err := execute("node-info", nodeFlag)
	require.NoError(t, err)
	require.Equal(t, "HardhatNetwork 2.22.1 7", out)
}

func TestConfigCmd(t *testing.T) {
	out, err := execute("config", "--node-url=http://127.0.0.1:9999", "--fork-block=42")
	require.NoError(t, err)
	require.Contains(t, out, "node_url: http://127.0.0.1:9999")
	require.Contains(t, out, "fork_block_number: 42")
	require.Contains(t, out, "log_level: none")
	require.Contains(t, out, "test_timeout: 20s")
}
