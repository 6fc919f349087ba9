package model

// JobConfig is the per-deployment configuration loaded from the viper config
// file by the builder.
type JobConfig struct {
	Network         string
	ChainID         uint64
	RPCs            []string
	AggregatorURL   string
	ReferralCode    uint64
	SlippagePercent float64
	SubgraphGateway string
	SubgraphAPIKey  string
	Apps            []string
}
