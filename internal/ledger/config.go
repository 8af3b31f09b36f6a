package ledger

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Built-in network names.
const (
	NetworkMainnet  = "mainnet"
	NetworkTestnet  = "testnet"
	NetworkDevnet   = "devnet"
	NetworkLocalnet = "localnet"
)

// NetworkDefinitions models the structure of configs/networks.yaml.
type NetworkDefinitions struct {
	Networks map[string]NetworkDefinition `yaml:"networks"`
}

// NetworkDefinition describes a single fullnode endpoint.
type NetworkDefinition struct {
	RPCURL      string `yaml:"rpc_url"`
	Description string `yaml:"description"`
}

// DefaultNetworks returns the public fullnode endpoints.
func DefaultNetworks() NetworkDefinitions {
	return NetworkDefinitions{Networks: map[string]NetworkDefinition{
		NetworkMainnet:  {RPCURL: "https://fullnode.mainnet.sui.io:443", Description: "Sui mainnet"},
		NetworkTestnet:  {RPCURL: "https://fullnode.testnet.sui.io:443", Description: "Sui testnet"},
		NetworkDevnet:   {RPCURL: "https://fullnode.devnet.sui.io:443", Description: "Sui devnet"},
		NetworkLocalnet: {RPCURL: "http://127.0.0.1:9000", Description: "local sui-test-validator"},
	}}
}

// LoadNetworkDefinitions parses the YAML file and overlays it on the
// built-in networks. An empty path yields the defaults.
func LoadNetworkDefinitions(path string) (NetworkDefinitions, error) {
	defs := DefaultNetworks()
	if strings.TrimSpace(path) == "" {
		return defs, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return NetworkDefinitions{}, fmt.Errorf("读取网络配置失败: %w", err)
	}

	var custom NetworkDefinitions
	if err := yaml.Unmarshal(content, &custom); err != nil {
		return NetworkDefinitions{}, fmt.Errorf("解析网络配置失败: %w", err)
	}
	for name, def := range custom.Networks {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		defs.Networks[name] = def
	}
	return defs, nil
}

// Endpoint resolves the RPC URL for network. A non-empty override wins.
func (d NetworkDefinitions) Endpoint(network, override string) (string, error) {
	if url := strings.TrimSpace(override); url != "" {
		return url, nil
	}
	name := strings.ToLower(strings.TrimSpace(network))
	if name == "" {
		return "", fmt.Errorf("未指定网络")
	}
	def, ok := d.Networks[name]
	if !ok {
		return "", fmt.Errorf("未知网络 %s, 可选: %s", network, strings.Join(d.Names(), ", "))
	}
	if strings.TrimSpace(def.RPCURL) == "" {
		return "", fmt.Errorf("网络 %s 未配置 RPC 地址", name)
	}
	return def.RPCURL, nil
}

// Names returns the sorted network names.
func (d NetworkDefinitions) Names() []string {
	names := make([]string, 0, len(d.Networks))
	for name := range d.Networks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
