package domain

import "testing"

func TestNormLowerCasesAddresses(t *testing.T) {
	got := Norm("0xABCDEF0123456789")
	want := Pool("0xabcdef0123456789")
	if got != want {
		t.Errorf("Norm() = %q, want %q", got, want)
	}
}

func TestNameResolvesKnownPoolsCaseInsensitively(t *testing.T) {
	p := Norm("0x4585FE77225b41b697c938b018e2ac67ac5a20c0")
	if got := Name(p); got != "WBTC-WETH-500" {
		t.Errorf("Name() = %q, want %q", got, "WBTC-WETH-500")
	}
}

func TestNameIsEmptyForUnknownPool(t *testing.T) {
	if got := Name(Norm("0xdeadbeef")); got != "" {
		t.Errorf("expected empty name for an unknown pool, got %q", got)
	}
}

func TestAllPoolsHasNoDuplicatesAndMatchesTable(t *testing.T) {
	seen := make(map[Pool]bool, len(AllPools))
	for _, p := range AllPools {
		if seen[p] {
			t.Fatalf("duplicate pool %v in AllPools", p)
		}
		seen[p] = true
	}
	if len(AllPools) != len(poolNames) {
		t.Errorf("AllPools has %d entries, expected %d matching poolNames", len(AllPools), len(poolNames))
	}
}

func TestBrontesPoolsIsTheFullUniverse(t *testing.T) {
	if len(BrontesPools) != len(AllPools) {
		t.Errorf("expected BrontesPools to track AllPools, got %d vs %d", len(BrontesPools), len(AllPools))
	}
}

func TestDeploymentBlockDefaultsToZeroForPreMergePools(t *testing.T) {
	preMerge := Norm("0x88e6a0c2ddd26feeb64f039a2c41296fcb3f5640") // USDC-WETH-500
	if got := DeploymentBlock(preMerge); got != 0 {
		t.Errorf("expected deployment block 0 for a pre-merge pool, got %d", got)
	}
}

func TestDeploymentBlockForPostMergePool(t *testing.T) {
	pepe := Norm("0x11950d141ecb863f01007add7d1a342041227b58")
	if got := DeploymentBlock(pepe); got != 17083569 {
		t.Errorf("DeploymentBlock(PEPE-WETH-3000) = %d, want 17083569", got)
	}
}

func TestClusterOfUnknownPoolIsEmpty(t *testing.T) {
	if got := ClusterOf(Norm("0xffffffffffffffffffffffffffffffffffffffff")); got != "" {
		t.Errorf("expected empty cluster for an unknown pool, got %q", got)
	}
}

func TestEveryClusteredPoolBelongsToAtMostOneCluster(t *testing.T) {
	counts := make(map[Pool]int)
	for p := range clusterMembership {
		counts[p]++
	}
	for p, n := range counts {
		if n > 1 {
			t.Errorf("pool %v appears in the membership table %d times", p, n)
		}
	}
}

func TestAllClustersCoversEveryDistinctClusterLabel(t *testing.T) {
	seen := make(map[Cluster]bool)
	for _, c := range clusterMembership {
		seen[c] = true
	}
	for c := range seen {
		found := false
		for _, ac := range AllClusters {
			if ac == c {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("cluster %q used in membership table but missing from AllClusters", c)
		}
	}
}

func TestMonthLabelKnownAndUnknownChunkStarts(t *testing.T) {
	if got := MonthLabel(15537392); got != "Sep 15 - Oct 15, 2022" {
		t.Errorf("MonthLabel(15537392) = %q, want %q", got, "Sep 15 - Oct 15, 2022")
	}
	if got := MonthLabel(1); got != "" {
		t.Errorf("expected empty label for an unknown chunk start, got %q", got)
	}
}
