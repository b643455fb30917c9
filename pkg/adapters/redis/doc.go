/*
Package redis shares assignments between workers through Redis.

Store keeps each assignment as JSON under a prefixed key (DefaultPrefix)
with an optional TTL, plus a sorted-set index used by List. Locker
guards the computation of one assignment with SET NX PX.
*/
package redis
