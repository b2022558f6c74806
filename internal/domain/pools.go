// Package domain holds the fixed, compile-time configuration tables for the
// pool universe, markout enumeration, and the unified sample type shared by
// every stage of the pipeline.
package domain

import "strings"

// Pool is an opaque lower-cased pair-address identifier.
type Pool string

// Norm lower-cases a raw address into canonical Pool form.
func Norm(address string) Pool {
	return Pool(strings.ToLower(address))
}

// poolNames is the display-label side table for every known pool.
var poolNames = map[Pool]string{
	Norm("0x88e6a0c2ddd26feeb64f039a2c41296fcb3f5640"): "USDC-WETH-500",
	Norm("0x3416cf6c708da44db2624d63ea0aaef7113527c6"): "USDC-USDT-100",
	Norm("0x11b815efb8f581194ae79006d24e0d814b7697f6"): "WETH-USDT-500",
	Norm("0x4585fe77225b41b697c938b018e2ac67ac5a20c0"): "WBTC-WETH-500",
	Norm("0x8ad599c3a0ff1de082011efddc58f1908eb6e6d8"): "USDC-WETH-3000",
	Norm("0xc7bbec68d12a0d1830360f8ec58fa599ba1b0e9b"): "WETH-USDT-100",
	Norm("0xcbcdf9626bc03e24f779434178a73a0b4bad62ed"): "WBTC-WETH-3000",
	Norm("0x5777d92f208679db4b9778590fa3cab3ac9e2168"): "DAI-USDC-100",
	Norm("0x4e68ccd3e89f51c3074ca5072bbac773960dfa36"): "WETH-USDT-3000",
	Norm("0x60594a405d53811d3bc4766596efd80fd545a270"): "DAI-WETH-500",
	Norm("0x7858e59e0c01ea06df3af3d20ac7b0003275d4bf"): "USDC-USDT-500",
	Norm("0x435664008F38B0650fBC1C9fc971D0A3Bc2f1e47"): "USDe-USDT-100",
	Norm("0xa6cc3c2531fdaa6ae1a3ca84c2855806728693e8"): "LINK-WETH-3000",
	Norm("0x11950d141ecb863f01007add7d1a342041227b58"): "PEPE-WETH-3000",
	Norm("0x9a772018fbd77fcd2d25657e5c547baff3fd7d16"): "WBTC-USDC-500",
	Norm("0x99ac8ca7087fa4a2a1fb6357269965a2014abc35"): "WBTC-USDC-3000",
	Norm("0x1d42064fc4beb5f8aaf85f4617ae8b3b5b8bd801"): "UNI-WETH-3000",
	Norm("0xc2e9f25be6257c210d7adf0d4cd6e3e881ba25f8"): "DAI-WETH-3000",
	Norm("0x48da0965ab2d2cbf1c17c09cfb5cbe67ad5b1406"): "DAI-USDT-100",
	Norm("0x0d4a11d5EEaaC28EC3F61d100daF4d40471f1852"): "USDT-WETH-v2",
	Norm("0xB4e16d0168e52d35CaCD2c6185b44281Ec28C9Dc"): "WETH-USDC-v2",
	Norm("0xa43fe16908251ee70ef74718545e4fe6c5ccec9f"): "PEPE-WETH-v2",
}

// AllPools is the fixed universe P. It is built by ranging over poolNames, so
// its order is not defined and can differ between runs.
var AllPools = func() []Pool {
	pools := make([]Pool, 0, len(poolNames))
	for p := range poolNames {
		pools = append(pools, p)
	}
	return pools
}()

// BrontesPools is the event-source allow-list; identical to AllPools here
// because every pool in the universe is also tracked by the event source.
var BrontesPools = AllPools

// Name returns the display label for a pool, or "" if unknown.
func Name(p Pool) string {
	return poolNames[p]
}

// deploymentBlocks holds first-block-of-existence for pools that post-date
// the merge; all others default to 0 (pre-merge pools).
var deploymentBlocks = map[Pool]uint64{
	Norm("0x11950d141ecb863f01007add7d1a342041227b58"): 17083569, // PEPE-WETH-3000 (V3)
	Norm("0xa43fe16908251ee70ef74718545e4fe6c5ccec9f"): 17046833, // PEPE-WETH-v2 (V2)
	Norm("0x435664008F38B0650fBC1C9fc971D0A3Bc2f1e47"): 18634804, // USDe-USDT-100
	Norm("0xc7bbec68d12a0d1830360f8ec58fa599ba1b0e9b"): 16266586, // WETH-USDT-100
}

// DeploymentBlock returns the first block at which a pool exists. Pools with
// no entry default to 0 (pre-merge).
func DeploymentBlock(p Pool) uint64 {
	return deploymentBlocks[p]
}

// MergeBlock is the first block in scope for the whole pipeline.
const MergeBlock uint64 = 15537392

// Cluster groups a subset of pools under a named, overlapping-but-disjoint-
// per-pool label. A pool belongs to at most one cluster.
type Cluster string

const (
	ClusterStable      Cluster = "stable"
	ClusterWBTCWETH    Cluster = "wbtc_weth"
	ClusterUSDCWETH    Cluster = "usdc_weth"
	ClusterUSDTWETH    Cluster = "usdt_weth"
	ClusterDAIWETH     Cluster = "dai_weth"
	ClusterUSDCWBTC    Cluster = "usdc_wbtc"
	ClusterAltcoinWETH Cluster = "altcoin_weth"
)

var clusterMembership = map[Pool]Cluster{
	Norm("0x3416cf6c708da44db2624d63ea0aaef7113527c6"): ClusterStable,
	Norm("0x5777d92f208679db4b9778590fa3cab3ac9e2168"): ClusterStable,
	Norm("0x7858e59e0c01ea06df3af3d20ac7b0003275d4bf"): ClusterStable,
	Norm("0x48da0965ab2d2cbf1c17c09cfb5cbe67ad5b1406"): ClusterStable,
	Norm("0x435664008F38B0650fBC1C9fc971D0A3Bc2f1e47"): ClusterStable,

	Norm("0x4585fe77225b41b697c938b018e2ac67ac5a20c0"): ClusterWBTCWETH,
	Norm("0xcbcdf9626bc03e24f779434178a73a0b4bad62ed"): ClusterWBTCWETH,

	Norm("0x88e6a0c2ddd26feeb64f039a2c41296fcb3f5640"): ClusterUSDCWETH,
	Norm("0x8ad599c3a0ff1de082011efddc58f1908eb6e6d8"): ClusterUSDCWETH,
	Norm("0xB4e16d0168e52d35CaCD2c6185b44281Ec28C9Dc"): ClusterUSDCWETH,

	Norm("0xc7bbec68d12a0d1830360f8ec58fa599ba1b0e9b"): ClusterUSDTWETH,
	Norm("0x4e68ccd3e89f51c3074ca5072bbac773960dfa36"): ClusterUSDTWETH,
	Norm("0x11b815efb8f581194ae79006d24e0d814b7697f6"): ClusterUSDTWETH,
	Norm("0x0d4a11d5EEaaC28EC3F61d100daF4d40471f1852"): ClusterUSDTWETH,

	Norm("0x60594a405d53811d3bc4766596efd80fd545a270"): ClusterDAIWETH,
	Norm("0xc2e9f25be6257c210d7adf0d4cd6e3e881ba25f8"): ClusterDAIWETH,

	Norm("0x9a772018fbd77fcd2d25657e5c547baff3fd7d16"): ClusterUSDCWBTC,
	Norm("0x99ac8ca7087fa4a2a1fb6357269965a2014abc35"): ClusterUSDCWBTC,

	Norm("0x1d42064fc4beb5f8aaf85f4617ae8b3b5b8bd801"): ClusterAltcoinWETH,
	Norm("0x11950d141ecb863f01007add7d1a342041227b58"): ClusterAltcoinWETH,
	Norm("0xa6cc3c2531fdaa6ae1a3ca84c2855806728693e8"): ClusterAltcoinWETH,
	Norm("0xa43fe16908251ee70ef74718545e4fe6c5ccec9f"): ClusterAltcoinWETH,
}

// ClusterOf returns the cluster label for p, or "" if the pool belongs to none.
func ClusterOf(p Pool) Cluster {
	return clusterMembership[p]
}

// AllClusters lists every cluster label in a fixed display order.
var AllClusters = []Cluster{
	ClusterStable, ClusterWBTCWETH, ClusterUSDCWETH, ClusterUSDTWETH,
	ClusterDAIWETH, ClusterUSDCWBTC, ClusterAltcoinWETH,
}

// intervalRanges labels each chunk's start block with a human date range,
// used by the monthly-totals cluster artifact and chunk-metadata reporting.
var intervalRanges = map[uint64]string{
	15537392: "Sep 15 - Oct 15, 2022",
	15753392: "Oct 15 - Nov 14, 2022",
	15969392: "Nov 14 - Dec 14, 2022",
	16185392: "Dec 14 - Jan 14, 2023",
	16401392: "Jan 14 - Feb 13, 2023",
	16617392: "Feb 13 - Mar 15, 2023",
	16833392: "Mar 15 - Apr 15, 2023",
	17049392: "Apr 15 - May 15, 2023",
	17265392: "May 15 - Jun 14, 2023",
	17481392: "Jun 14 - Jul 15, 2023",
	17697392: "Jul 15 - Aug 14, 2023",
	17913392: "Aug 14 - Sep 13, 2023",
	18129392: "Sep 13 - Oct 14, 2023",
	18345392: "Oct 14 - Nov 13, 2023",
	18561392: "Nov 13 - Dec 13, 2023",
	18777392: "Dec 13 - Jan 13, 2024",
	18993392: "Jan 13 - Feb 13, 2024",
	19209392: "Feb 13 - Mar 13, 2024",
	19425392: "Mar 13 - Apr 13, 2024",
	19641392: "Apr 13 - May 14, 2024",
	19857392: "May 14 - Jun 1, 2024",
}

// MonthLabel returns the human date range for the chunk starting at block s,
// or "" when s is not a known chunk boundary.
func MonthLabel(chunkStart uint64) string {
	return intervalRanges[chunkStart]
}
