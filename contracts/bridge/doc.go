/*
Package bridge implements Bridge contract which is deployed to the rollup
chain.

Bridge locks GAS on the rollup chain to have it released on the other side.
A deposit is a GAS transfer to the bridge account carrying a RelayRequest
structure in the data argument: the recipient account on the destination
chain, the gas allowance for the transfer to be completed there and an
optional payload forwarded to the recipient. Plain transfers without a
request are rejected, deposited funds stay in the bridge custody.

Every accepted deposit becomes a relay record with a chain-unique sequence
number. The record is reduced to a deterministic protobuf receipt, and the
base58 encoded SHA-256 hash of the receipt serves as the relay ID on both
chains. Relayer infrastructure watches Relay notifications, executes
transfers on the destination chain and reports back via FinalizeRelay.

# Contract notifications

Relay notification. It is produced by every accepted deposit.

	Relay:
	  - name: seq
	    type: Integer
	  - name: id
	    type: String
	  - name: from
	    type: Hash160
	  - name: recipient
	    type: Hash160
	  - name: amount
	    type: Integer
	  - name: minGas
	    type: Integer

RelayCompleted notification. It is produced when committee confirms the
relay on the destination chain.

	RelayCompleted:
	  - name: seq
	    type: Integer
	  - name: id
	    type: String
*/
package bridge

/*
Contract storage model.

# Summary
Key-value storage format:
 - 'relaySequence' -> int
   sequence number of the latest accepted relay
 - r<seq> -> std.Serialize(Relay)
   relay records of all accepted deposits

# Relays
Relay records are never removed. FinalizeRelay is the only mutation, it
flips the Completed flag of a single record once.
*/
