package demo

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/EscanBE/erc20harness/config"
	"github.com/EscanBE/erc20harness/constants"
	"github.com/EscanBE/erc20harness/erc20"
	"github.com/EscanBE/erc20harness/integration_test_util"
	itutiltypes "github.com/EscanBE/erc20harness/integration_test_util/types"
	"github.com/EscanBE/erc20harness/utils"
)

const mockERC20Artifact = "MockERC20"

//goland:noinspection SpellCheckingInspection
var _ = Describe("MockERC20", Ordered, func() {
	var (
		cits  *integration_test_util.ChainIntegrationTestSuite
		token *erc20.Token
		owner *itutiltypes.TestAccount
		user1 *itutiltypes.TestAccount
		user2 *itutiltypes.TestAccount
		user3 *itutiltypes.TestAccount
	)

	amount := func(value string) *big.Int {
		return utils.MustNumberToBigInt(value, 18)
	}

	balanceOf := func(address common.Address) *big.Int {
		balance, err := token.BalanceOf(cits.Context(), address)
		Expect(err).To(BeNil())
		return balance
	}

	BeforeAll(func() {
		cfg, err := config.Load(constants.DefaultEnvFile)
		Expect(err).To(BeNil())

		cits = integration_test_util.CreateChainIntegrationTestSuiteFromConfig(suiteT, require.New(GinkgoT()), cfg)
		DeferCleanup(cits.Cleanup)

		if !cits.Artifacts.Has(mockERC20Artifact) {
			Skip("no " + mockERC20Artifact + " artifact under " + cits.Artifacts.Root() + ", compile the contracts first")
		}

		owner = cits.WalletAccounts.Number(1)
		user1 = cits.WalletAccounts.Number(2)
		user2 = cits.WalletAccounts.Number(3)
		user3 = cits.CreateAccount()

		address, _ := cits.DeployContract(
			mockERC20Artifact,
			[]interface{}{"Useless mock ERC20 token", "MOCK", uint8(18)},
			integration_test_util.DeployOptions{Signer: owner},
		)
		token = erc20.NewToken(address, cits.Backend)

		tx, err := token.Mint(cits.TransactOpts(owner), user1.Address, amount("10000"))
		Expect(err).To(BeNil())
		cits.WaitTx(tx, "mint")

		cits.MineBlocks(1)
	})

	Describe("Properties", func() {
		It("should have the constructor values", func() {
			name, err := token.Name(cits.Context())
			Expect(err).To(BeNil())
			Expect(name).To(Equal("Useless mock ERC20 token"))

			symbol, err := token.Symbol(cits.Context())
			Expect(err).To(BeNil())
			Expect(symbol).To(Equal("MOCK"))

			decimals, err := token.Decimals(cits.Context())
			Expect(err).To(BeNil())
			Expect(decimals).To(Equal(uint8(18)))
		})

		It("should have the minted supply", func() {
			totalSupply, err := token.TotalSupply(cits.Context())
			Expect(err).To(BeNil())
			Expect(totalSupply.String()).To(Equal(amount("10000").String()))
			Expect(balanceOf(user1.Address).String()).To(Equal(amount("10000").String()))
		})
	})

	Describe("Minting", func() {
		It("should mint to the recipient and emit a Transfer from zero address", func() {
			tx, err := token.Mint(cits.TransactOpts(owner), user2.Address, amount("1.5"))
			Expect(err).To(BeNil())
			receipt := cits.WaitTx(tx, "mint")

			events, err := token.TransfersOf(receipt)
			Expect(err).To(BeNil())
			Expect(events).To(HaveLen(1))
			Expect(events[0].From).To(Equal(utils.ZeroAddress()))
			Expect(events[0].To).To(Equal(user2.Address))
			Expect(events[0].Value.String()).To(Equal(amount("1.5").String()))

			Expect(balanceOf(user2.Address).String()).To(Equal(amount("1.5").String()))
		})
	})

	Describe("Transferring", func() {
		It("should move tokens between accounts", func() {
			before1 := balanceOf(user1.Address)
			before2 := balanceOf(user2.Address)

			tx, err := token.Transfer(cits.TransactOpts(user1), user2.Address, amount("100"))
			Expect(err).To(BeNil())
			receipt := cits.WaitTx(tx, "transfer")

			events, err := token.TransfersOf(receipt)
			Expect(err).To(BeNil())
			Expect(events).To(HaveLen(1))
			Expect(events[0].From).To(Equal(user1.Address))

			Expect(balanceOf(user1.Address).String()).To(Equal(new(big.Int).Sub(before1, amount("100")).String()))
			Expect(balanceOf(user2.Address).String()).To(Equal(new(big.Int).Add(before2, amount("100")).String()))
		})

		It("should spend allowance on transferFrom", func() {
			tx, err := token.Approve(cits.TransactOpts(user1), user2.Address, amount("10"))
			Expect(err).To(BeNil())
			cits.WaitTx(tx, "approve")

			allowance, err := token.Allowance(cits.Context(), user1.Address, user2.Address)
			Expect(err).To(BeNil())
			Expect(allowance.String()).To(Equal(amount("10").String()))

			tx, err = token.TransferFrom(cits.TransactOpts(user2), user1.Address, user3.Address, amount("4"))
			Expect(err).To(BeNil())
			cits.WaitTx(tx, "transferFrom")

			allowance, err = token.Allowance(cits.Context(), user1.Address, user2.Address)
			Expect(err).To(BeNil())
			Expect(allowance.String()).To(Equal(amount("6").String()))
			Expect(balanceOf(user3.Address).String()).To(Equal(amount("4").String()))
		})

		It("should reject transfers above the balance", func() {
			_, err := token.Transfer(cits.TransactOpts(user2), user1.Address, utils.MaxUint256())
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Burning", func() {
		It("should burn from the holder and reduce the supply", func() {
			supplyBefore, err := token.TotalSupply(cits.Context())
			Expect(err).To(BeNil())
			balanceBefore := balanceOf(user1.Address)

			tx, err := token.Burn(cits.TransactOpts(owner), user1.Address, amount("50"))
			Expect(err).To(BeNil())
			cits.WaitTx(tx, "burn")

			supplyAfter, err := token.TotalSupply(cits.Context())
			Expect(err).To(BeNil())
			Expect(supplyAfter.String()).To(Equal(new(big.Int).Sub(supplyBefore, amount("50")).String()))
			Expect(balanceOf(user1.Address).String()).To(Equal(new(big.Int).Sub(balanceBefore, amount("50")).String()))
		})
	})

	Describe("Funding", func() {
		It("should fund an account from the registered source", func() {
			cits.RegisterTokenSource("MOCK", token.Address(), user1)
			receiver := cits.CreateAccount()

			cits.FundAccount(receiver.Address, "25.5", "MOCK")

			Expect(balanceOf(receiver.Address).String()).To(Equal(amount("25.5").String()))
		})

		It("should refuse to fund more than the source holds", func() {
			cits.RegisterTokenSource("MOCK", token.Address(), user3)

			_, err := erc20.Fund(cits.Context(), token, cits.TokenSourceFor("MOCK"), user2.Address, amount("5"))
			Expect(err).To(HaveOccurred())
		})
	})
})
