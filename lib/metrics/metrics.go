package metrics

import prom "github.com/prometheus/client_golang/prometheus"

const (
	Namespace = "quartzcore"

	SubsystemContract = "contract"
	SubsystemState    = "state"

	LabelChainName      = "chain"
	LabelContractName   = "contract_name"
	LabelContractMethod = "contract_method"
	LabelOutcome        = "outcome"
)

// contract execution
var (
	// 合约调用
	ContractCallCounter = prom.NewCounterVec(
		prom.CounterOpts{
			Namespace: Namespace,
			Subsystem: SubsystemContract,
			Name:      "call_total",
			Help:      "Total number of contract calls by outcome.",
		},
		[]string{LabelChainName, LabelContractName, LabelContractMethod, LabelOutcome})
	// 调用耗时
	ContractCallHistogram = prom.NewHistogramVec(
		prom.HistogramOpts{
			Namespace: Namespace,
			Subsystem: SubsystemContract,
			Name:      "cost_seconds",
			Help:      "Histogram of contract call latency.",
			Buckets:   prom.DefBuckets,
		},
		[]string{LabelChainName, LabelContractName, LabelContractMethod})
	// 资源消耗
	ContractCostCounter = prom.NewCounterVec(
		prom.CounterOpts{
			Namespace: Namespace,
			Subsystem: SubsystemContract,
			Name:      "resource_total",
			Help:      "Total abstract execution cost consumed.",
		},
		[]string{LabelChainName, LabelContractName})
)

// block state
var (
	BlockCommitCounter = prom.NewCounterVec(
		prom.CounterOpts{
			Namespace: Namespace,
			Subsystem: SubsystemState,
			Name:      "block_commit_total",
			Help:      "Total number of sealed blocks.",
		},
		[]string{LabelChainName})
	TxScopeCounter = prom.NewCounterVec(
		prom.CounterOpts{
			Namespace: Namespace,
			Subsystem: SubsystemState,
			Name:      "tx_scope_total",
			Help:      "Total number of transaction scopes by outcome.",
		},
		[]string{LabelChainName, LabelOutcome})
)

func RegisterMetrics() {
	prom.MustRegister(ContractCallCounter)
	prom.MustRegister(ContractCallHistogram)
	prom.MustRegister(ContractCostCounter)
	prom.MustRegister(BlockCommitCounter)
	prom.MustRegister(TxScopeCounter)
}
