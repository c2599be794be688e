package classifier

import "github.com/selivandex/newswire/pkg/models"

// keywordWeight pairs a lower-case pattern with its score contribution.
// Patterns are matched as substrings, so "surge" also hits "surges".
type keywordWeight struct {
	keyword string
	weight  float64
}

// buildPatterns returns the static keyword tables per asset type.
// These mirror the vocabulary of the feeds the service subscribes to;
// weights favor unambiguous terms over generic market words.
func buildPatterns() map[models.AssetType][]keywordWeight {
	return map[models.AssetType][]keywordWeight{
		models.AssetCrypto: {
			{"bitcoin", 1.0}, {"btc", 0.9}, {"ethereum", 1.0}, {"eth ", 0.7},
			{"crypto", 0.9}, {"cryptocurrency", 1.0}, {"blockchain", 0.8},
			{"altcoin", 0.8}, {"defi", 0.8}, {"stablecoin", 0.8},
			{"solana", 0.8}, {"xrp", 0.7}, {"dogecoin", 0.7},
			{"binance", 0.7}, {"coinbase", 0.7}, {"web3", 0.6},
			{"nft", 0.6}, {"mining", 0.4}, {"halving", 0.7},
			{"satoshi", 0.6}, {"wallet", 0.3}, {"token", 0.4},
		},
		models.AssetStocks: {
			{"stock", 0.9}, {"shares", 0.8}, {"equity", 0.7}, {"equities", 0.8},
			{"nasdaq", 0.9}, {"s&p 500", 1.0}, {"s&p500", 1.0}, {"dow jones", 1.0},
			{"earnings", 0.8}, {"dividend", 0.8}, {"ipo", 0.8},
			{"wall street", 0.8}, {"nyse", 0.9}, {"buyback", 0.7},
			{"quarterly results", 0.8}, {"market cap", 0.5}, {"analyst", 0.4},
			{"guidance", 0.5}, {"valuation", 0.4},
		},
		models.AssetForex: {
			{"forex", 1.0}, {"currency", 0.7}, {"exchange rate", 0.9},
			{"dollar", 0.6}, {"euro", 0.7}, {"yen", 0.7}, {"pound", 0.6},
			{"eur/usd", 1.0}, {"usd/jpy", 1.0}, {"gbp/usd", 1.0},
			{"devaluation", 0.8}, {"fx market", 0.9}, {"currency pair", 0.9},
			{"yuan", 0.7}, {"franc", 0.6},
		},
		models.AssetCommodities: {
			{"gold", 0.8}, {"silver", 0.7}, {"oil", 0.7}, {"crude", 0.9},
			{"brent", 0.9}, {"wti", 0.9}, {"natural gas", 0.9},
			{"commodity", 1.0}, {"commodities", 1.0}, {"opec", 0.9},
			{"copper", 0.7}, {"wheat", 0.7}, {"barrel", 0.6},
			{"bullion", 0.8}, {"precious metal", 0.9},
		},
		models.AssetMacro: {
			{"inflation", 0.9}, {"fed ", 0.8}, {"federal reserve", 1.0},
			{"interest rate", 0.9}, {"rate hike", 0.9}, {"rate cut", 0.9},
			{"gdp", 0.9}, {"unemployment", 0.8}, {"cpi", 0.9}, {"ppi", 0.8},
			{"recession", 0.9}, {"central bank", 0.9}, {"ecb", 0.8},
			{"monetary policy", 1.0}, {"fiscal", 0.7}, {"treasury", 0.7},
			{"bond yield", 0.8}, {"fomc", 0.9}, {"jobs report", 0.8},
			{"stimulus", 0.7}, {"tariff", 0.7},
		},
	}
}
