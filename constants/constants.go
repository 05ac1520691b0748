package constants

const (
	ApplicationName = "erc20harness"

	// SimulatedChainId is the EIP-155 chain id of go-ethereum's simulated backend.
	SimulatedChainId = 1337

	// EtherDecimals is the precision of ether and of most ERC20 tokens.
	EtherDecimals = 18

	// DefaultForkBlockNumber pins mainnet forks to a block where the default token sources hold funds.
	DefaultForkBlockNumber = 11880158

	DefaultNodeURL      = "http://127.0.0.1:8545"
	DefaultArtifactsDir = "artifacts/contracts"
	DefaultEnvFile      = "test.env"

	DefaultBlockGasLimit  = 30_000_000
	DefaultAccounts       = 20
	DefaultAccountBalance = "10000"
)
