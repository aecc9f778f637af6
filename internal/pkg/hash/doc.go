// Package hash provides one-way hashing of secrets and identifiers.
//
// Two families live here behind the same Hash interface:
//
//   - keyed deterministic digests (HMACSHA256), used where equal inputs must
//     produce equal outputs so they can be looked up, such as national
//     identity numbers;
//   - salted password hashes (Bcrypt, Argon2id), where only Verify is
//     meaningful.
package hash
