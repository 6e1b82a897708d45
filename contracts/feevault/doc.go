/*
Package feevault implements FeeVault contract which is deployed to the rollup
chain as a part of its fee collection scheme.

Fee vault is a passive GAS accumulator. Other contracts of the chain send
their collected fees to the vault account and never talk to it otherwise. Once
the accumulated balance reaches the minimum withdrawal amount fixed at the
deployment, anyone may invoke Withdraw to drain the vault to the recipient
account, also fixed at the deployment. Depending on the configured withdrawal
target, funds either go to the recipient directly or are deposited to the
bridge contract accompanied by a relay request for the destination chain.

A single chain normally runs a family of vaults (base fees, l1 fees,
sequencer fees), each being a separate deployment of this contract with its
own configuration.

# Contract notifications

Withdrawal notification. It is produced by every successful withdrawal.

	Withdrawal:
	  - name: value
	    type: Integer
	  - name: to
	    type: Hash160
	  - name: from
	    type: Hash160

WithdrawalX notification. This is an enhanced withdrawal notification carrying
the withdrawal target of the vault.

	WithdrawalX:
	  - name: value
	    type: Integer
	  - name: to
	    type: Hash160
	  - name: from
	    type: Hash160
	  - name: target
	    type: Integer
*/
package feevault

/*
Contract storage model.

# Summary
Key-value storage format:
 - 'recipient' -> interop.Hash160
   account all withdrawals are forwarded to
 - 'minWithdrawal' -> int
   lowest vault balance Withdraw accepts
 - 'targetChain' -> int
   chain withdrawn funds are destined for (see withdrawtarget package)
 - 'bridgeScriptHash' -> interop.Hash160
   bridge contract deposits go through, present for same chain target only
 - 'totalProcessed' -> int
   total amount of GAS ever withdrawn from the vault

# Configuration
All keys except 'totalProcessed' are written once on deployment and never
change afterwards.
*/
