package devnode

import (
	"strconv"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// ClientVersion is reported by web3_clientVersion
const ClientVersion = "devnode/v1.0.0"

// NetAPI implements the net_* JSON-RPC namespace
type NetAPI struct {
	node *Node
}

// Version returns the network ID, which equals the chain ID
func (api *NetAPI) Version() string {
	return strconv.FormatUint(api.node.chainID, 10)
}

// Listening returns true (always listening)
func (api *NetAPI) Listening() bool {
	return true
}

// PeerCount returns the number of peers (always 0 for a local node)
func (api *NetAPI) PeerCount() hexutil.Uint {
	return hexutil.Uint(0)
}

// Web3API implements the web3_* JSON-RPC namespace
type Web3API struct{}

// ClientVersion returns the client version
func (api *Web3API) ClientVersion() string {
	return ClientVersion
}

// Sha3 returns the Keccak-256 hash of the input
func (api *Web3API) Sha3(input hexutil.Bytes) hexutil.Bytes {
	return crypto.Keccak256(input)
}
