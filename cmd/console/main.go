package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math/big"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/defistate/defistate-amm-go/calculator/tickmath"
	"github.com/defistate/defistate-amm-go/cmd/console/config"
	"github.com/defistate/defistate-amm-go/engine"
	"github.com/defistate/defistate-amm-go/quote"
	"github.com/defistate/defistate-amm-go/storage"
)

// --- VISUAL CONSTANTS ---
const (
	Reset  = "\033[0m"
	Bold   = "\033[1m"
	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Cyan   = "\033[36m"
	Gray   = "\033[37m"
)

// header prints a styled section header
func header(title string) {
	fmt.Println("\n" + Bold + Cyan + ":: " + title + " ::" + Reset)
}

// defaultAccount is used when the config names no accounts.
var defaultAccount = common.HexToAddress("0x0000000000000000000000000000000000001001")

// tokenBook resolves configured tokens by symbol or address.
type tokenBook struct {
	bySymbol  map[string]config.Token
	byAddress map[common.Address]config.Token
}

func newTokenBook(tokens []config.Token) *tokenBook {
	b := &tokenBook{
		bySymbol:  make(map[string]config.Token, len(tokens)),
		byAddress: make(map[common.Address]config.Token, len(tokens)),
	}
	for _, t := range tokens {
		b.bySymbol[t.Symbol] = t
		b.byAddress[common.HexToAddress(t.Address)] = t
	}
	return b
}

func (b *tokenBook) resolve(input string) (config.Token, bool) {
	if t, ok := b.bySymbol[strings.ToUpper(input)]; ok {
		return t, true
	}
	if common.IsHexAddress(input) {
		t, ok := b.byAddress[common.HexToAddress(input)]
		return t, ok
	}
	return config.Token{}, false
}

func (b *tokenBook) symbol(addr common.Address) string {
	if t, ok := b.byAddress[addr]; ok {
		return t.Symbol
	}
	return addr.Hex()[:10] + "..."
}

func (b *tokenBook) decimals(addr common.Address) int32 {
	if t, ok := b.byAddress[addr]; ok {
		return t.Decimals
	}
	return 18
}

// console bundles everything the command handlers need.
type console struct {
	engine   *engine.Engine
	ledger   *engine.MemoryLedger
	store    *storage.Store
	book     *tokenBook
	accounts []common.Address
	reader   *bufio.Reader
}

func main() {
	// --- 1. CONFIG & LOGGING (To File) ---
	cfg, err := loadConfig()
	if err != nil {
		fmt.Println(Red + "Failed to load configuration: " + err.Error() + Reset)
		os.Exit(1)
	}

	logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		panic(fmt.Sprintf("Failed to open log file: %v", err))
	}
	defer logFile.Close()

	rootLogger := slog.New(slog.NewJSONHandler(logFile, nil))

	closeApp := func() {
		fmt.Println("\n" + Red + "Fatal error occurred. Check " + cfg.LogFile + " for details." + Reset)
		os.Exit(1)
	}

	// --- 2. LEDGER & ACCOUNTS ---
	ledger := engine.NewMemoryLedger()
	accounts := make([]common.Address, 0, len(cfg.Accounts))
	for _, a := range cfg.Accounts {
		accounts = append(accounts, common.HexToAddress(a))
	}
	if len(accounts) == 0 {
		accounts = append(accounts, defaultAccount)
	}
	for _, t := range cfg.Tokens {
		unit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(t.Decimals)), nil)
		grant := new(big.Int).Mul(big.NewInt(cfg.FaucetAmount), unit)
		for _, acct := range accounts {
			ledger.Mint(common.HexToAddress(t.Address), acct, grant)
		}
	}

	// --- 3. ENGINE ---
	engineCfg := &engine.Config{
		Transfer: ledger,
		Logger:   rootLogger.With("component", "engine"),
		Registry: prometheus.DefaultRegisterer,
	}
	if cfg.Vault != "" {
		engineCfg.Vault = common.HexToAddress(cfg.Vault)
	}
	eng, err := engine.New(engineCfg)
	if err != nil {
		rootLogger.Error("Failed to initialize engine", "error", err)
		closeApp()
	}

	// --- 4. PERSISTENCE ---
	var store *storage.Store
	if cfg.Database != "" {
		store, err = storage.Open(cfg.Database)
		if err != nil {
			rootLogger.Error("Failed to open database", "path", cfg.Database, "error", err)
			closeApp()
		}
		if err := eng.LoadFrom(store); err != nil {
			rootLogger.Error("Failed to load saved state", "error", err)
			closeApp()
		}
	}

	// --- 5. CONSOLE LOOP ---
	c := &console{
		engine:   eng,
		ledger:   ledger,
		store:    store,
		book:     newTokenBook(cfg.Tokens),
		accounts: accounts,
		reader:   bufio.NewReader(os.Stdin),
	}

	fmt.Println(Green + "Starting AMM Console..." + Reset)
	fmt.Println("Logs are being written to '" + cfg.LogFile + "'")
	c.run()
}

func (c *console) run() {
	for {
		c.printMenu()

		fmt.Print(Bold + "Enter selection: " + Reset)
		input, err := c.reader.ReadString('\n')
		if err != nil {
			fmt.Println("Error reading input:", err)
			return
		}
		input = strings.TrimSpace(input)

		if input == "q" {
			c.save()
			fmt.Println(Yellow + "Exiting..." + Reset)
			return
		}
		c.handleCommand(input)

		fmt.Println("\n" + Gray + "[Press Enter to continue]" + Reset)
		c.reader.ReadString('\n')
	}
}

func (c *console) printMenu() {
	fmt.Print("\033[H\033[2J") // Clear screen
	fmt.Println(Bold + "AMM CONSOLE" + Reset + Gray + " | v0.1.0" + Reset)
	fmt.Println(Gray + "-----------------------------------" + Reset)
	fmt.Printf(" %s1.%s List Pools\n", Cyan, Reset)
	fmt.Printf(" %s2.%s Create Pool\n", Cyan, Reset)
	fmt.Printf(" %s3.%s Add Liquidity\n", Cyan, Reset)
	fmt.Printf(" %s4.%s Remove Liquidity\n", Cyan, Reset)
	fmt.Printf(" %s5.%s Collect Fees\n", Cyan, Reset)
	fmt.Printf(" %s6.%s Swap       %s(Single Pool or Routed)%s\n", Cyan, Reset, Gray, Reset)
	fmt.Printf(" %s7.%s Positions  %s(by Owner)%s\n", Cyan, Reset, Gray, Reset)
	fmt.Printf(" %s8.%s Best Route %s(Quote Only)%s\n", Cyan, Reset, Gray, Reset)
	fmt.Printf(" %s9.%s Balances\n", Cyan, Reset)
	fmt.Println(Gray + "-----------------------------------" + Reset)
	fmt.Printf(" %sh.%s Help\n", Yellow, Reset)
	fmt.Printf(" %sq.%s Quit %s(saves state)%s\n", Red, Reset, Gray, Reset)
	fmt.Println("")
}

func (c *console) handleCommand(input string) {
	switch input {
	case "1":
		c.listPools()
	case "2":
		c.createPool()
	case "3":
		c.addLiquidity()
	case "4":
		c.removeLiquidity()
	case "5":
		c.collectFees()
	case "6":
		c.swap()
	case "7":
		c.listPositions()
	case "8":
		c.bestRoute()
	case "9":
		c.balances()
	case "h":
		printHelp()
	default:
		fmt.Println(Red + "Unknown command." + Reset)
	}
}

// --- COMMAND HANDLERS ---

func (c *console) listPools() {
	pools := c.engine.Pools()
	if len(pools) == 0 {
		fmt.Println(Yellow + "[INFO] No pools yet. Create one first." + Reset)
		return
	}

	header("POOLS")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 4, ' ', 0)
	fmt.Fprintln(w, "ID\tPAIR\tFEE\tTICK\tPRICE\tLIQUIDITY\t")
	fmt.Fprintln(w, "--\t----\t---\t----\t-----\t---------\t")
	for _, p := range pools {
		price := quote.AdjustedSpotPrice(p.SqrtPriceX96, c.book.decimals(p.Token0), c.book.decimals(p.Token1))
		fmt.Fprintf(w, "%d\t%s/%s\t%.2f%%\t%d\t%s\t%s\t\n",
			p.ID,
			c.book.symbol(p.Token0), c.book.symbol(p.Token1),
			float64(p.FeeTier)/10000,
			p.Tick,
			price.StringFixed(6),
			p.Liquidity.String(),
		)
	}
	w.Flush()
}

func (c *console) createPool() {
	header("CREATE POOL")
	tokenA, ok := c.readToken("Token A (symbol or address): ")
	if !ok {
		return
	}
	tokenB, ok := c.readToken("Token B (symbol or address): ")
	if !ok {
		return
	}
	feeTier, ok := c.readFeeTier()
	if !ok {
		return
	}

	fmt.Print(Bold + "Initial price (token B per token A, e.g. 2000): " + Reset)
	priceInput, _ := c.reader.ReadString('\n')
	price, ok := new(big.Float).SetString(strings.TrimSpace(priceInput))
	if !ok || price.Sign() <= 0 {
		fmt.Println(Red + "Invalid price." + Reset)
		return
	}

	addrA, addrB := common.HexToAddress(tokenA.Address), common.HexToAddress(tokenB.Address)
	// The pool quotes token1 per token0 for the canonically ordered pair;
	// invert the entered price when the pair flips, then rescale for the
	// tokens' decimals.
	ratio := new(big.Float).Copy(price)
	dec0, dec1 := tokenA.Decimals, tokenB.Decimals
	if addrB.Cmp(addrA) < 0 {
		ratio.Quo(big.NewFloat(1), ratio)
		dec0, dec1 = dec1, dec0
	}
	scale := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(dec1)), nil))
	scale.Quo(scale, new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(dec0)), nil)))
	ratio.Mul(ratio, scale)

	priceX96 := new(big.Float).Mul(ratio, new(big.Float).SetInt(new(big.Int).Lsh(big.NewInt(1), 96)))
	priceX96Int, _ := priceX96.Int(nil)
	sqrtPriceX96, err := tickmath.SqrtPriceFromPrice(priceX96Int)
	if err != nil {
		fmt.Printf(Red+"[ERROR] %v%s\n", err, Reset)
		return
	}

	view, err := c.engine.CreatePool(addrA, addrB, feeTier, sqrtPriceX96)
	if err != nil {
		fmt.Printf(Red+"[ERROR] %v%s\n", err, Reset)
		return
	}
	fmt.Printf("%sPool %d created:%s %s/%s at %.2f%% (tick %d)\n",
		Green, view.ID, Reset,
		c.book.symbol(view.Token0), c.book.symbol(view.Token1),
		float64(view.FeeTier)/10000, view.Tick)
}

func (c *console) addLiquidity() {
	header("ADD LIQUIDITY")
	owner, ok := c.readAccount()
	if !ok {
		return
	}
	tokenA, ok := c.readToken("Token A: ")
	if !ok {
		return
	}
	tokenB, ok := c.readToken("Token B: ")
	if !ok {
		return
	}
	feeTier, ok := c.readFeeTier()
	if !ok {
		return
	}
	tickLower, ok := c.readInt("Lower tick: ")
	if !ok {
		return
	}
	tickUpper, ok := c.readInt("Upper tick: ")
	if !ok {
		return
	}
	amountA, ok := c.readAmount(fmt.Sprintf("Max %s to deposit: ", tokenA.Symbol), tokenA.Decimals)
	if !ok {
		return
	}
	amountB, ok := c.readAmount(fmt.Sprintf("Max %s to deposit: ", tokenB.Symbol), tokenB.Decimals)
	if !ok {
		return
	}

	addrA, addrB := common.HexToAddress(tokenA.Address), common.HexToAddress(tokenB.Address)
	amount0, amount1 := amountA, amountB
	if addrB.Cmp(addrA) < 0 {
		amount0, amount1 = amount1, amount0
	}

	rcpt, err := c.engine.AddLiquidity(&engine.AddLiquidityParams{
		Owner:          owner,
		TokenA:         addrA,
		TokenB:         addrB,
		FeeTier:        feeTier,
		TickLower:      tickLower,
		TickUpper:      tickUpper,
		Amount0Desired: amount0,
		Amount1Desired: amount1,
	})
	if err != nil {
		fmt.Printf(Red+"[ERROR] %v%s\n", err, Reset)
		return
	}
	fmt.Printf("%sPosition %d opened%s with liquidity %s\n", Green, rcpt.PositionID, Reset, rcpt.Liquidity)
	c.printPoolAmounts(rcpt.PoolID, "Deposited", rcpt.Amount0, rcpt.Amount1)
}

func (c *console) removeLiquidity() {
	header("REMOVE LIQUIDITY")
	caller, ok := c.readAccount()
	if !ok {
		return
	}
	posID, ok := c.readUint("Position ID: ")
	if !ok {
		return
	}

	rcpt, err := c.engine.RemoveLiquidity(&engine.RemoveLiquidityParams{
		Caller:     caller,
		PositionID: posID,
	})
	if err != nil {
		fmt.Printf(Red+"[ERROR] %v%s\n", err, Reset)
		return
	}
	fmt.Printf("%sLiquidity %s removed from position %d%s\n", Green, rcpt.Liquidity, rcpt.PositionID, Reset)
	c.printPoolAmounts(rcpt.PoolID, "Returned", rcpt.Amount0, rcpt.Amount1)
}

func (c *console) collectFees() {
	header("COLLECT FEES")
	caller, ok := c.readAccount()
	if !ok {
		return
	}
	posID, ok := c.readUint("Position ID: ")
	if !ok {
		return
	}

	rcpt, err := c.engine.CollectFees(caller, posID, nil, nil)
	if err != nil {
		fmt.Printf(Red+"[ERROR] %v%s\n", err, Reset)
		return
	}
	c.printPoolAmounts(rcpt.PoolID, "Collected", rcpt.Amount0, rcpt.Amount1)
}

func (c *console) swap() {
	header("SWAP")
	trader, ok := c.readAccount()
	if !ok {
		return
	}
	tokenIn, ok := c.readToken("Token in: ")
	if !ok {
		return
	}
	tokenOut, ok := c.readToken("Token out: ")
	if !ok {
		return
	}
	amountIn, ok := c.readAmount("Amount in: ", tokenIn.Decimals)
	if !ok {
		return
	}
	fmt.Print(Bold + "Fee tier (500/3000/10000, empty = best route): " + Reset)
	tierInput, _ := c.reader.ReadString('\n')
	tierInput = strings.TrimSpace(tierInput)
	var feeTier uint64
	if tierInput != "" {
		if _, err := fmt.Sscanf(tierInput, "%d", &feeTier); err != nil {
			fmt.Println(Red + "Invalid fee tier." + Reset)
			return
		}
	}

	rcpt, err := c.engine.Swap(&engine.SwapParams{
		Trader:   trader,
		TokenIn:  common.HexToAddress(tokenIn.Address),
		TokenOut: common.HexToAddress(tokenOut.Address),
		FeeTier:  feeTier,
		AmountIn: amountIn,
	})
	if err != nil {
		fmt.Printf(Red+"[ERROR] %v%s\n", err, Reset)
		return
	}

	fmt.Printf("%sSwapped%s %s %s -> %s %s\n", Green, Reset,
		formatAmount(rcpt.AmountIn, tokenIn.Decimals), tokenIn.Symbol,
		formatAmount(rcpt.AmountOut, tokenOut.Decimals), tokenOut.Symbol)
	if rcpt.AmountInUnspent.Sign() > 0 {
		fmt.Printf("%sUnspent input refunded:%s %s %s\n", Yellow, Reset,
			formatAmount(rcpt.AmountInUnspent, tokenIn.Decimals), tokenIn.Symbol)
	}
	fmt.Println(Bold + "Route:" + Reset)
	for i, hop := range rcpt.Route {
		fmt.Printf("  %d. pool %d: %s -> %s\n", i+1, hop.PoolID,
			c.book.symbol(hop.TokenIn), c.book.symbol(hop.TokenOut))
	}
}

func (c *console) listPositions() {
	header("POSITIONS")
	owner, ok := c.readAccount()
	if !ok {
		return
	}
	positions := c.engine.GetPositionsByOwner(owner)
	if len(positions) == 0 {
		fmt.Println(Yellow + "[INFO] No positions for this owner." + Reset)
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 4, ' ', 0)
	fmt.Fprintln(w, "ID\tPOOL\tRANGE\tLIQUIDITY\tOWED0\tOWED1\tIN RANGE\t")
	fmt.Fprintln(w, "--\t----\t-----\t---------\t-----\t-----\t--------\t")
	for _, p := range positions {
		inRange, err := c.engine.PositionInRange(p.ID)
		status := Green + "yes" + Reset
		if err != nil || !inRange {
			status = Gray + "no" + Reset
		}
		fmt.Fprintf(w, "%d\t%d\t[%d, %d)\t%s\t%s\t%s\t%s\t\n",
			p.ID, p.PoolID, p.TickLower, p.TickUpper,
			p.Liquidity, p.TokensOwed0, p.TokensOwed1, status)
	}
	w.Flush()
}

func (c *console) bestRoute() {
	header("BEST ROUTE")
	tokenIn, ok := c.readToken("Token in: ")
	if !ok {
		return
	}
	tokenOut, ok := c.readToken("Token out: ")
	if !ok {
		return
	}
	amountIn, ok := c.readAmount("Amount in: ", tokenIn.Decimals)
	if !ok {
		return
	}

	route, err := c.engine.GetOptimalSwapPath(
		common.HexToAddress(tokenIn.Address),
		common.HexToAddress(tokenOut.Address),
		amountIn,
	)
	if err != nil {
		fmt.Printf(Red+"[ERROR] %v%s\n", err, Reset)
		return
	}

	fmt.Printf("%sEst. Output:%s %s %s\n\n", Bold, Reset,
		formatAmount(route.AmountOut, tokenOut.Decimals), tokenOut.Symbol)
	fmt.Println(Bold + "Route Path:" + Reset)
	for i, hop := range route.Hops {
		fmt.Printf(" [ Step %d ]\n", i+1)
		fmt.Printf("  %s%-6s%s\n", Cyan, c.book.symbol(hop.TokenIn), Reset)
		fmt.Printf("    %s|%s\n", Gray, Reset)
		fmt.Printf("    %s+---[ pool %d ]--->%s  %s%-6s%s\n",
			Gray, hop.PoolID, Reset, Cyan, c.book.symbol(hop.TokenOut), Reset)
		fmt.Println("")
	}
}

func (c *console) balances() {
	header("BALANCES")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 4, ' ', 0)
	fmt.Fprintln(w, "ACCOUNT\tTOKEN\tBALANCE\t")
	fmt.Fprintln(w, "-------\t-----\t-------\t")
	for _, acct := range c.accounts {
		for addr, t := range c.book.byAddress {
			bal := c.ledger.BalanceOf(addr, acct)
			fmt.Fprintf(w, "%s\t%s\t%s\t\n", acct.Hex(), t.Symbol, formatAmount(bal, t.Decimals))
		}
	}
	w.Flush()
}

func printHelp() {
	fmt.Print("\033[H\033[2J")

	header("CONCENTRATED LIQUIDITY AMM")
	fmt.Println(Bold + "Concept: Tick-Ranged Liquidity" + Reset)
	fmt.Println("Each pool tracks its price as a Q64.96 square root and holds")
	fmt.Println("liquidity in discrete tick ranges. Providers choose a range;")
	fmt.Println("their capital only backs trades while the price is inside it.")
	fmt.Println("")

	fmt.Println(Bold + "1. POOLS" + Reset)
	fmt.Println("   A pool is a token pair plus a fee tier (0.05%, 0.3%, 1%).")
	fmt.Println("   The same pair can exist at several tiers as separate pools.")
	fmt.Println("")

	fmt.Println(Bold + "2. POSITIONS" + Reset)
	fmt.Println("   Add liquidity between two ticks to earn a share of the fees")
	fmt.Println("   paid by swaps crossing your range. Collect fees at any time;")
	fmt.Println("   remove liquidity to get your principal back.")
	fmt.Println("")

	fmt.Println(Bold + "3. SWAPS & ROUTING" + Reset)
	fmt.Println("   Name a fee tier to trade one pool directly, or leave it")
	fmt.Println("   empty to let the router pick the best path, including")
	fmt.Println("   multi-hop routes through intermediate tokens.")
	fmt.Println("")

	fmt.Println(Gray + "---------------------------------------------------------------" + Reset)
	fmt.Println("State persists to the configured database on quit and is loaded")
	fmt.Println("again on the next start.")
	fmt.Println(Gray + "---------------------------------------------------------------" + Reset)
}

// --- HELPERS ---

func (c *console) save() {
	if c.store == nil {
		return
	}
	if err := c.engine.SaveTo(c.store); err != nil {
		fmt.Printf(Red+"[ERROR] Saving state failed: %v%s\n", err, Reset)
		return
	}
	fmt.Println(Green + "State saved." + Reset)
}

func (c *console) readToken(prompt string) (config.Token, bool) {
	fmt.Print(Bold + prompt + Reset)
	input, _ := c.reader.ReadString('\n')
	input = strings.TrimSpace(input)
	t, ok := c.book.resolve(input)
	if !ok {
		fmt.Printf(Red+"[ERROR] Unknown token %q%s\n", input, Reset)
		return config.Token{}, false
	}
	return t, true
}

func (c *console) readAccount() (common.Address, bool) {
	if len(c.accounts) == 1 {
		return c.accounts[0], true
	}
	fmt.Printf(Bold+"Account (1-%d or address): "+Reset, len(c.accounts))
	input, _ := c.reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if common.IsHexAddress(input) {
		return common.HexToAddress(input), true
	}
	var idx int
	if _, err := fmt.Sscanf(input, "%d", &idx); err != nil || idx < 1 || idx > len(c.accounts) {
		fmt.Println(Red + "Invalid account." + Reset)
		return common.Address{}, false
	}
	return c.accounts[idx-1], true
}

func (c *console) readFeeTier() (uint64, bool) {
	fmt.Print(Bold + "Fee tier (500, 3000 or 10000 pips): " + Reset)
	input, _ := c.reader.ReadString('\n')
	var tier uint64
	if _, err := fmt.Sscanf(strings.TrimSpace(input), "%d", &tier); err != nil {
		fmt.Println(Red + "Invalid fee tier." + Reset)
		return 0, false
	}
	return tier, true
}

func (c *console) readInt(prompt string) (int64, bool) {
	fmt.Print(Bold + prompt + Reset)
	input, _ := c.reader.ReadString('\n')
	var v int64
	if _, err := fmt.Sscanf(strings.TrimSpace(input), "%d", &v); err != nil {
		fmt.Println(Red + "Invalid number." + Reset)
		return 0, false
	}
	return v, true
}

func (c *console) readUint(prompt string) (uint64, bool) {
	fmt.Print(Bold + prompt + Reset)
	input, _ := c.reader.ReadString('\n')
	var v uint64
	if _, err := fmt.Sscanf(strings.TrimSpace(input), "%d", &v); err != nil {
		fmt.Println(Red + "Invalid number." + Reset)
		return 0, false
	}
	return v, true
}

func (c *console) readAmount(prompt string, decimals int32) (*big.Int, bool) {
	fmt.Print(Bold + prompt + Reset)
	input, _ := c.reader.ReadString('\n')
	amountFloat, ok := new(big.Float).SetString(strings.TrimSpace(input))
	if !ok || amountFloat.Sign() <= 0 {
		fmt.Println(Red + "Invalid amount format." + Reset)
		return nil, false
	}

	// Scale: raw = input * 10^decimals
	unit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	raw := new(big.Float).Mul(amountFloat, new(big.Float).SetInt(unit))
	rawInt, _ := raw.Int(nil)
	return rawInt, true
}

func (c *console) printPoolAmounts(poolID uint64, verb string, amount0, amount1 *big.Int) {
	p, ok := c.engine.PoolByID(poolID)
	if !ok {
		return
	}
	fmt.Printf("%s: %s %s, %s %s\n", verb,
		formatAmount(amount0, c.book.decimals(p.Token0)), c.book.symbol(p.Token0),
		formatAmount(amount1, c.book.decimals(p.Token1)), c.book.symbol(p.Token1))
}

func formatAmount(raw *big.Int, decimals int32) string {
	unit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	human := new(big.Float).Quo(new(big.Float).SetInt(raw), new(big.Float).SetInt(unit))
	return human.Text('f', 4)
}

func loadConfig() (*config.Config, error) {
	configPath := flag.String("config", "config.yaml", "Path to the configuration file.")
	flag.Parse()
	log.Printf("Loading configuration from: %s", *configPath)
	return config.LoadConfig(*configPath)
}
