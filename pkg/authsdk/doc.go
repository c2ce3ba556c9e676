/*
Package authsdk is a Go client for the voxauth identity service.

# Overview

An account moves through signup, email verification and optional biometric
and voice enrollment. SDKClient covers the calls made before a session
exists; Session wraps a bearer token for the calls that need one.

	client := authsdk.NewSDKClient("https://auth.example.com")

	signup, err := client.Signup(ctx, authsdk.SignupRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Password:  "correct horse",
	})

	// The code arrives by email.
	_, err = client.VerifyEmail(ctx, signup.CorrelationKey, "123456")

	session, err := client.Login(ctx, "ada@example.com", "correct horse")
	profile, err := session.Profile(ctx)

# Correlation keys

Signup returns a correlation key. It lets the client resend or submit the
email code and make the first biometric and voice enrollment without a
session. Replacing an existing enrollment takes a Session.

# Errors

Failed calls return *APIError carrying the HTTP status and a stable error
code (see the ErrorCode constants):

	_, err := client.Login(ctx, email, password)
	if authsdk.IsCode(err, authsdk.ErrorCodeNotVerified) {
		// ask the user to check their inbox
	}

Sessions do not refresh. Once Expired reports true, log in again.
*/
package authsdk
